package scheduling

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// ReportMailer emails the nightly job summary to an ops address. It is wired
// in only when SMTP is configured; send failures are the caller's to log.
type ReportMailer struct {
    host string
    port int
    user string
    pass string
    to   string
}

func NewReportMailer(host string, port int, user, pass, to string) *ReportMailer {
    return &ReportMailer{host: host, port: port, user: user, pass: pass, to: to}
}

func (m *ReportMailer) Deliver(report Report) error {
    msg := gomail.NewMessage()
    msg.SetHeader("From", m.user)
    msg.SetHeader("To", m.to)
    msg.SetHeader("Subject", fmt.Sprintf("Slot generation report %s", report.JobID))
    msg.SetBody("text/plain", fmt.Sprintf(
        "Job %s finished at %s.\n\nEvents processed: %d\nSlots created: %d\nDuplicates skipped: %d\nInsert errors: %d\nFailed events: %v\nPurged slots: %d\n",
        report.JobID,
        report.FinishedAt.Format("2006-01-02 15:04:05 MST"),
        report.EventsProcessed,
        report.SlotsCreated,
        report.Duplicates,
        report.InsertErrors,
        report.FailedEvents,
        report.PurgedSlots,
    ))

    d := gomail.NewDialer(m.host, m.port, m.user, m.pass)
    return d.DialAndSend(msg)
}
