package push

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/shehrozeikram/ERP-sub001/internal/directory"
	"github.com/shehrozeikram/ERP-sub001/internal/fanout"
	"github.com/shehrozeikram/ERP-sub001/internal/models"
	"github.com/shehrozeikram/ERP-sub001/internal/reconcile"
	"github.com/shehrozeikram/ERP-sub001/internal/timeutil"
)

// Wire error kinds. Business failures are per record; the endpoint call
// itself only fails when the whole batch is undeliverable.
const (
	KindInvalidTimestamp    = "InvalidTimestamp"
	KindUnknownEmployee     = "UnknownEmployee"
	KindStoreUnavailable    = "StoreUnavailable"
	KindListenerBindFailure = "ListenerBindFailure"
)

// deviceRecord is one raw punch as the device sends it. Devices disagree on
// field names and on whether state is a string or a number, so every field
// is accepted loosely.
type deviceRecord struct {
	DeviceUserID flexString `json:"deviceUserId"`
	UID          flexString `json:"uid"`
	UserID       flexString `json:"userId"`
	RecordTime   flexString `json:"recordTime"`
	Timestamp    flexString `json:"timestamp"`
	State        flexString `json:"state"`
}

func (r deviceRecord) employeeCode() string {
	if r.DeviceUserID != "" {
		return string(r.DeviceUserID)
	}
	if r.UID != "" {
		return string(r.UID)
	}
	return string(r.UserID)
}

func (r deviceRecord) rawTimestamp() string {
	if r.RecordTime != "" {
		return string(r.RecordTime)
	}
	return string(r.Timestamp)
}

// flexString decodes a JSON string or number into a string.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var value string
		if err := json.Unmarshal(data, &value); err != nil {
			return err
		}
		*f = flexString(value)
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var value json.Number
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	*f = flexString(value.String())
	return nil
}

type recordResult struct {
	Success      bool                    `json:"success"`
	Action       string                  `json:"action,omitempty"`
	EmployeeID   string                  `json:"employeeId,omitempty"`
	EmployeeName string                  `json:"employeeName,omitempty"`
	Timestamp    string                  `json:"timestamp,omitempty"`
	IsCheckIn    *bool                   `json:"isCheckIn,omitempty"`
	Attendance   *models.DailyAttendance `json:"attendance,omitempty"`
	ErrorKind    string                  `json:"errorKind,omitempty"`
	Error        string                  `json:"error,omitempty"`
}

type batchResponse struct {
	Success   bool           `json:"success"`
	Processed int            `json:"processed"`
	Created   int            `json:"created"`
	Updated   int            `json:"updated"`
	Unchanged int            `json:"unchanged"`
	Errors    int            `json:"errors"`
	Results   []recordResult `json:"results"`
}

// handlePush accepts a single punch object or an array of them. Records are
// processed independently; one bad record never aborts its siblings.
func (s *Service) handlePush(c *gin.Context) {
	var body json.RawMessage
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid json"})
		return
	}

	var records []deviceRecord
	if isJSONArray(body) {
		if err := json.Unmarshal(body, &records); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid json"})
			return
		}
	} else {
		var record deviceRecord
		if err := json.Unmarshal(body, &record); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid json"})
			return
		}
		records = []deviceRecord{record}
	}

	response := batchResponse{Success: true, Results: make([]recordResult, 0, len(records))}
	storeFailures := 0

	for _, record := range records {
		result := s.processRecord(c.Request.Context(), record)
		response.Results = append(response.Results, result)

		if !result.Success {
			response.Errors++
			if result.ErrorKind == KindStoreUnavailable {
				storeFailures++
			}
			continue
		}

		response.Processed++
		switch result.Action {
		case reconcile.ActionCreated:
			response.Created++
		case reconcile.ActionUpdated:
			response.Updated++
		default:
			response.Unchanged++
		}

		// Only mutating reconciliations reach subscribers; no-op merges
		// stay quiet. Enqueue-only, so the device response never waits
		// on a subscriber.
		if result.Action != reconcile.ActionUnchanged {
			s.currentHub().Broadcast(fanout.Message{
				Type:      "attendance",
				Data:      result,
				Timestamp: s.now().Format(time.RFC3339),
			})
		}
	}

	if len(records) > 0 && storeFailures == len(records) {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success":   false,
			"errorKind": KindStoreUnavailable,
			"error":     "attendance store unavailable",
			"retryable": true,
		})
		return
	}

	c.JSON(http.StatusOK, response)
}

func (s *Service) processRecord(parent context.Context, record deviceRecord) recordResult {
	code := record.employeeCode()
	if code == "" {
		return recordResult{Success: false, ErrorKind: KindUnknownEmployee, Error: "missing employee code"}
	}
	raw := record.rawTimestamp()
	if raw == "" {
		return recordResult{Success: false, ErrorKind: KindInvalidTimestamp, Error: "missing timestamp"}
	}

	instant, err := timeutil.Normalize(raw, s.location)
	if err != nil {
		return recordResult{Success: false, ErrorKind: KindInvalidTimestamp, Error: "invalid timestamp: " + raw}
	}

	ctx, cancel := context.WithTimeout(parent, s.recordTimeout)
	defer cancel()

	employee, err := s.resolver.Resolve(ctx, code)
	if err != nil {
		return failureFor(err)
	}

	direction := reconcile.CheckOut
	if _, ok := s.checkInStates[string(record.State)]; ok {
		direction = reconcile.CheckIn
	}

	result, err := s.engine.Apply(ctx, employee.ID, instant, direction)
	if err != nil {
		return failureFor(err)
	}

	isCheckIn := direction == reconcile.CheckIn
	log.Info().
		Str("employee", employee.EmployeeCode).
		Str("direction", direction.String()).
		Str("action", result.Action).
		Time("instant", instant).
		Msg("punch reconciled")

	return recordResult{
		Success:      true,
		Action:       result.Action,
		EmployeeID:   employee.ID.String(),
		EmployeeName: employee.FullName(),
		Timestamp:    timeutil.FormatLocal(instant, s.location),
		IsCheckIn:    &isCheckIn,
		Attendance:   &result.Aggregate,
	}
}

// failureFor maps pipeline errors onto the closed set of wire error kinds.
// Timeouts count as store unavailability: the caller should retry.
func failureFor(err error) recordResult {
	kind := KindStoreUnavailable
	if errors.Is(err, directory.ErrUnknownEmployee) {
		kind = KindUnknownEmployee
	} else if errors.Is(err, timeutil.ErrInvalidTimestamp) {
		kind = KindInvalidTimestamp
	}
	return recordResult{Success: false, ErrorKind: kind, Error: err.Error()}
}

func (s *Service) handleHealth(c *gin.Context) {
	status := s.Status()
	state := "stopped"
	if status.Running {
		state = "running"
	}
	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"status":          state,
		"timestamp":       s.now().Format(time.RFC3339),
		"subscriberCount": status.SubscriberCount,
	})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func (s *Service) handleLive(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Err(err).Msg("websocket upgrade failed")
		return
	}
	s.currentHub().Add(conn)
}

func (s *Service) currentHub() *fanout.Hub {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hub == nil {
		// Stop raced with an in-flight request; broadcasts land nowhere.
		return fanout.NewHub()
	}
	return s.hub
}

func isJSONArray(body []byte) bool {
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '['
}
