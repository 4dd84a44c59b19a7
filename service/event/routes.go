package event

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/tandemcare/tandem-server/cmd/models"
	"github.com/tandemcare/tandem-server/service/scheduling"
	"gorm.io/gorm"
)

type EventHandler struct {
    db          *gorm.DB
    regenerator *scheduling.Regenerator
}

func NewEventHandler(db *gorm.DB, regenerator *scheduling.Regenerator) *EventHandler {
    return &EventHandler{db: db, regenerator: regenerator}
}


func (h *EventHandler) RegisterRoutes(router *mux.Router) {
    router.HandleFunc("/providers/{providerId}/events", h.CreateEvent).Methods("POST")
    router.HandleFunc("/providers/{providerId}/events", h.GetEvents).Methods("GET")
    router.HandleFunc("/providers/{providerId}/events/{id}", h.GetEvent).Methods("GET")
    router.HandleFunc("/providers/{providerId}/events/{id}", h.UpdateEvent).Methods("PUT")
    router.HandleFunc("/providers/{providerId}/events/{id}", h.PauseEvent).Methods("DELETE")
    router.HandleFunc("/providers/{providerId}/events/{id}/regenerate", h.RegenerateSlots).Methods("POST")
    router.HandleFunc("/providers/{providerId}/events/{id}/exceptions", h.CreateException).Methods("POST")
    router.HandleFunc("/providers/{providerId}/events/{id}/exceptions", h.GetExceptions).Methods("GET")
    router.HandleFunc("/providers/{providerId}/events/{id}/exceptions/{exceptionId}", h.DeleteException).Methods("DELETE")
}




func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
    vars := mux.Vars(r)
    providerID, err := strconv.ParseUint(vars["providerId"], 10, 64)
    if err != nil {
        http.Error(w, "Invalid provider ID", http.StatusBadRequest)
        return
    }

    var event models.BookingEvent
    if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
        http.Error(w, "Invalid request body", http.StatusBadRequest)
        return
    }

    event.ProviderID = uint(providerID)
    if event.Status == "" {
        event.Status = models.EventStatusDraft
    }

    if err := event.Validate(); err != nil {
        http.Error(w, err.Error(), http.StatusBadRequest)
        return
    }

    if err := h.db.Create(&event).Error; err != nil {
        http.Error(w, "Error creating event", http.StatusInternalServerError)
        return
    }

    // A template created directly as active gets its slots materialized right
    // away; the nightly job would otherwise leave it empty until tomorrow.
    if event.Status == models.EventStatusActive {
        if err := h.regenerator.Regenerate(r.Context(), event.ID, nil); err != nil {
            http.Error(w, "Event saved but slot generation failed: "+err.Error(), http.StatusBadGateway)
            return
        }
    }

    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(http.StatusCreated)
    json.NewEncoder(w).Encode(event)
}




func (h *EventHandler) GetEvents(w http.ResponseWriter, r *http.Request) {
    vars := mux.Vars(r)
    providerID, err := strconv.ParseUint(vars["providerId"], 10, 64)
    if err != nil {
        http.Error(w, "Invalid provider ID", http.StatusBadRequest)
        return
    }

    status := r.URL.Query().Get("status")
    page, _ := strconv.Atoi(r.URL.Query().Get("page"))
    if page < 1 {
        page = 1
    }
    pageSize := 10

    query := h.db.Model(&models.BookingEvent{}).Where("provider_id = ?", providerID)
    if status != "" {
        query = query.Where("status = ?", status)
    }

    var total int64
    query.Count(&total)

    var events []models.BookingEvent
    result := query.Offset((page - 1) * pageSize).Limit(pageSize).Find(&events)
    if result.Error != nil {
        http.Error(w, "Error retrieving events", http.StatusInternalServerError)
        return
    }

    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(map[string]interface{}{
        "events":      events,
        "total":       total,
        "page":        page,
        "page_size":   pageSize,
        "total_pages": (total + int64(pageSize) - 1) / int64(pageSize),
    })
}

func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
    event, ok := h.loadEvent(w, r)
    if !ok {
        return
    }

    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(event)
}

func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
    event, ok := h.loadEvent(w, r)
    if !ok {
        return
    }

    var updateData models.BookingEvent
    if err := json.NewDecoder(r.Body).Decode(&updateData); err != nil {
        http.Error(w, "Invalid request body", http.StatusBadRequest)
        return
    }

    event.Title = updateData.Title
    event.Timezone = updateData.Timezone
    event.LocationTypes = updateData.LocationTypes
    event.DefaultBilling = updateData.DefaultBilling
    event.EffectiveFrom = updateData.EffectiveFrom
    event.EffectiveTo = updateData.EffectiveTo
    event.DailyConfigs = updateData.DailyConfigs
    if updateData.Status != "" {
        event.Status = updateData.Status
    }

    if err := event.Validate(); err != nil {
        http.Error(w, err.Error(), http.StatusBadRequest)
        return
    }

    if err := h.db.Save(event).Error; err != nil {
        http.Error(w, "Error updating event", http.StatusInternalServerError)
        return
    }

    // Template, timezone or status changes invalidate the materialized slots.
    // Regeneration failure is surfaced to the provider; the saved template is
    // not rolled back, availability is just stale until the next run.
    if err := h.regenerator.Regenerate(r.Context(), event.ID, nil); err != nil {
        http.Error(w, "Event saved but slot regeneration failed: "+err.Error(), http.StatusBadGateway)
        return
    }

    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(event)
}

// PauseEvent retires a template without deleting it; booked slots keep
// referencing it.
func (h *EventHandler) PauseEvent(w http.ResponseWriter, r *http.Request) {
    event, ok := h.loadEvent(w, r)
    if !ok {
        return
    }

    event.Status = models.EventStatusPaused
    if err := h.db.Save(event).Error; err != nil {
        http.Error(w, "Error pausing event", http.StatusInternalServerError)
        return
    }

    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(map[string]string{
        "message": "Event paused",
    })
}

func (h *EventHandler) RegenerateSlots(w http.ResponseWriter, r *http.Request) {
    event, ok := h.loadEvent(w, r)
    if !ok {
        return
    }

    if err := h.regenerator.Regenerate(r.Context(), event.ID, nil); err != nil {
        http.Error(w, "Slot regeneration failed: "+err.Error(), http.StatusBadGateway)
        return
    }

    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(map[string]string{
        "message": "Slots regenerated",
    })
}

func (h *EventHandler) CreateException(w http.ResponseWriter, r *http.Request) {
    event, ok := h.loadEvent(w, r)
    if !ok {
        return
    }

    var exception models.ScheduleException
    if err := json.NewDecoder(r.Body).Decode(&exception); err != nil {
        http.Error(w, "Invalid request body", http.StatusBadRequest)
        return
    }

    exception.EventID = event.ID
    if err := exception.Validate(); err != nil {
        http.Error(w, err.Error(), http.StatusBadRequest)
        return
    }

    if err := h.db.Create(&exception).Error; err != nil {
        http.Error(w, "Error creating exception", http.StatusInternalServerError)
        return
    }

    // New blackouts must suppress already-materialized future slots.
    if err := h.regenerator.Regenerate(r.Context(), event.ID, nil); err != nil {
        http.Error(w, "Exception saved but slot regeneration failed: "+err.Error(), http.StatusBadGateway)
        return
    }

    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(http.StatusCreated)
    json.NewEncoder(w).Encode(exception)
}

func (h *EventHandler) GetExceptions(w http.ResponseWriter, r *http.Request) {
    event, ok := h.loadEvent(w, r)
    if !ok {
        return
    }

    var exceptions []models.ScheduleException
    if err := h.db.Where("event_id = ?", event.ID).Order("start_datetime").Find(&exceptions).Error; err != nil {
        http.Error(w, "Error retrieving exceptions", http.StatusInternalServerError)
        return
    }

    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(exceptions)
}

func (h *EventHandler) DeleteException(w http.ResponseWriter, r *http.Request) {
    event, ok := h.loadEvent(w, r)
    if !ok {
        return
    }

    vars := mux.Vars(r)
    exceptionID, err := strconv.ParseUint(vars["exceptionId"], 10, 64)
    if err != nil {
        http.Error(w, "Invalid exception ID", http.StatusBadRequest)
        return
    }

    result := h.db.Where("id = ? AND event_id = ?", exceptionID, event.ID).Delete(&models.ScheduleException{})
    if result.Error != nil {
        http.Error(w, "Error deleting exception", http.StatusInternalServerError)
        return
    }
    if result.RowsAffected == 0 {
        http.Error(w, "Exception not found", http.StatusNotFound)
        return
    }

    // Removing a blackout frees slots inside its window.
    if err := h.regenerator.Regenerate(r.Context(), event.ID, nil); err != nil {
        http.Error(w, "Exception deleted but slot regeneration failed: "+err.Error(), http.StatusBadGateway)
        return
    }

    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(map[string]string{
        "message": "Exception deleted",
    })
}

func (h *EventHandler) loadEvent(w http.ResponseWriter, r *http.Request) (*models.BookingEvent, bool) {
    vars := mux.Vars(r)
    providerID, err := strconv.ParseUint(vars["providerId"], 10, 64)
    if err != nil {
        http.Error(w, "Invalid provider ID", http.StatusBadRequest)
        return nil, false
    }

    eventID, err := strconv.ParseUint(vars["id"], 10, 64)
    if err != nil {
        http.Error(w, "Invalid event ID", http.StatusBadRequest)
        return nil, false
    }

    var event models.BookingEvent
    if err := h.db.Where("id = ? AND provider_id = ?", eventID, providerID).First(&event).Error; err != nil {
        http.Error(w, "Event not found", http.StatusNotFound)
        return nil, false
    }
    return &event, true
}
