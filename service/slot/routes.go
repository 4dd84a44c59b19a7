package slot

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/tandemcare/tandem-server/cmd/models"
	"gorm.io/gorm"
)

type SlotHandler struct {
    db *gorm.DB
}

func NewSlotHandler(db *gorm.DB) *SlotHandler {
    return &SlotHandler{db: db}
}


func (h *SlotHandler) RegisterRoutes(router *mux.Router) {
    router.HandleFunc("/providers/{providerId}/slots", h.GetSlots).Methods("GET")
    router.HandleFunc("/providers/{providerId}/slots/date/{date}", h.GetSlotsByDate).Methods("GET")
}




func (h *SlotHandler) GetSlots(w http.ResponseWriter, r *http.Request) {
    vars := mux.Vars(r)
    providerID, err := strconv.ParseUint(vars["providerId"], 10, 64)
    if err != nil {
        http.Error(w, "Invalid provider ID", http.StatusBadRequest)
        return
    }

    startDate := r.URL.Query().Get("start_date")
    endDate := r.URL.Query().Get("end_date")
    status := r.URL.Query().Get("status")
    eventID := r.URL.Query().Get("event_id")
    page, _ := strconv.Atoi(r.URL.Query().Get("page"))
    if page < 1 {
        page = 1
    }
    pageSize := 50

    query := h.db.Model(&models.TimeSlot{}).Where("provider_id = ?", providerID)

    if startDate != "" {
        query = query.Where("start_time >= ?", startDate)
    }
    if endDate != "" {
        query = query.Where("start_time <= ?", endDate)
    }
    if status != "" {
        query = query.Where("status = ?", status)
    }
    if eventID != "" {
        query = query.Where("event_id = ?", eventID)
    }

    var total int64
    query.Count(&total)

    var slots []models.TimeSlot
    result := query.Order("start_time").Offset((page - 1) * pageSize).Limit(pageSize).Find(&slots)
    if result.Error != nil {
        http.Error(w, "Error retrieving slots", http.StatusInternalServerError)
        return
    }

    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(map[string]interface{}{
        "slots":       slots,
        "total":       total,
        "page":        page,
        "page_size":   pageSize,
        "total_pages": (total + int64(pageSize) - 1) / int64(pageSize),
    })
}

func (h *SlotHandler) GetSlotsByDate(w http.ResponseWriter, r *http.Request) {
    vars := mux.Vars(r)
    providerID, err := strconv.ParseUint(vars["providerId"], 10, 64)
    if err != nil {
        http.Error(w, "Invalid provider ID", http.StatusBadRequest)
        return
    }

    dateStr := vars["date"]
    date, err := time.Parse("2006-01-02", dateStr)
    if err != nil {
        http.Error(w, "Invalid date format. Use YYYY-MM-DD", http.StatusBadRequest)
        return
    }

    var slots []models.TimeSlot
    err = h.db.Where("provider_id = ? AND start_time >= ? AND start_time < ?",
        providerID, date, date.AddDate(0, 0, 1)).
        Order("start_time").
        Find(&slots).Error
    if err != nil {
        http.Error(w, "Error retrieving slots", http.StatusInternalServerError)
        return
    }

    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(slots)
}
