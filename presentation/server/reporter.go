package server

import (
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"form_automation/domain/entities"
	"form_automation/domain/interfaces"
)

// maxPendingEvents bounds the buffer kept while no observer is connected;
// when it overflows the oldest events are dropped, screenshots first.
const maxPendingEvents = 256

// envelope is the wire shape of every outbound event
type envelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// WSReporter is a ProgressReporter backed by one websocket connection. A
// session starts before its observer connects, so events emitted early are
// buffered and flushed on Attach. All writes go through the mutex because
// gorilla connections allow only one concurrent writer.
type WSReporter struct {
	mu      sync.Mutex
	conn    *websocket.Conn
	pending []envelope
	logger  *logrus.Logger
}

// NewWSReporter - creates a reporter with no connection attached yet
func NewWSReporter(logger *logrus.Logger) *WSReporter {
	return &WSReporter{logger: logger}
}

// Attach - binds the observer's connection and flushes buffered events in
// order. A reconnect replaces the previous connection.
func (r *WSReporter) Attach(conn *websocket.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conn != nil {
		r.conn.Close()
	}
	r.conn = conn

	for _, env := range r.pending {
		if err := conn.WriteJSON(env); err != nil {
			r.logger.Warnf("Failed to flush buffered event %s: %v", env.Event, err)
			return
		}
	}
	r.pending = nil
}

// Detach - drops the connection if it is still the attached one
func (r *WSReporter) Detach(conn *websocket.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn == conn {
		r.conn = nil
	}
}

func (r *WSReporter) emit(event string, data interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()

	env := envelope{Event: event, Data: data}
	if r.conn == nil {
		r.buffer(env)
		return
	}
	if err := r.conn.WriteJSON(env); err != nil {
		r.logger.Warnf("Failed to send %s event: %v", event, err)
	}
}

// buffer - queues an event for the next Attach, dropping screenshot frames
// first when full
func (r *WSReporter) buffer(env envelope) {
	if len(r.pending) >= maxPendingEvents {
		for i, p := range r.pending {
			if p.Event == entities.EventProcessScreenshot {
				r.pending = append(r.pending[:i], r.pending[i+1:]...)
				break
			}
		}
		if len(r.pending) >= maxPendingEvents {
			r.pending = r.pending[1:]
		}
	}
	r.pending = append(r.pending, env)
}

// Log emits a process-log event
func (r *WSReporter) Log(message string) {
	r.emit(entities.EventProcessLog, entities.LogEvent{Message: message})
}

// Frame emits one process-screenshot event
func (r *WSReporter) Frame(frame entities.Frame) {
	r.emit(entities.EventProcessScreenshot, frame)
}

// SuggestedFields emits the model's inferred plan
func (r *WSReporter) SuggestedFields(fields []entities.FieldSpec, strategies []entities.ConfirmationStrategy) {
	r.emit(entities.EventSuggestedFields, entities.SuggestedFieldsEvent{
		Fields:     fields,
		Strategies: strategies,
	})
}

// RequestUserInput tells the observer a field value is needed
func (r *WSReporter) RequestUserInput(prompt string, inputType string) {
	r.emit(entities.EventRequestUserInput, entities.UserInputRequest{
		Prompt: prompt,
		Type:   inputType,
	})
}

// RequestFileUpload tells the observer a file is needed
func (r *WSReporter) RequestFileUpload(prompt string, fieldName string) {
	r.emit(entities.EventRequestFileUpload, entities.FileUploadRequest{
		Prompt:    prompt,
		FieldName: fieldName,
	})
}

// ConfirmSubmission shows the filled responses before the submit click
func (r *WSReporter) ConfirmSubmission(message string, responses map[string]string) {
	r.emit(entities.EventConfirmSubmission, entities.ConfirmSubmissionEvent{
		Message:   message,
		Responses: responses,
	})
}

// Result emits the final run status
func (r *WSReporter) Result(status entities.RunStatus, message string) {
	r.emit(entities.EventProcessResult, entities.ResultEvent{
		Status:  status,
		Message: message,
	})
}

var _ interfaces.ProgressReporter = (*WSReporter)(nil)
