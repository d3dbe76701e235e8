package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/example/cheatgen/internal/core/interview"
	"github.com/example/cheatgen/internal/core/schema"
	"github.com/example/cheatgen/internal/events"
	"github.com/example/cheatgen/internal/ports/primary"
)

const (
	sessionKey   = "session"
	streamBuffer = 64
)

// Handler serves the modeler API over sessions.
type Handler struct {
	sessions *SessionManager
}

// NewHandler creates a handler over a session manager.
func NewHandler(sessions *SessionManager) *Handler {
	return &Handler{sessions: sessions}
}

// withSession resolves :id, locks the session for the rest of the request
// and stores it in the context.
func (h *Handler) withSession(c *gin.Context) {
	s, ok := h.sessions.Get(c.Param("id"))
	if !ok {
		Fail(c, http.StatusNotFound, nil, "Session not found", nil)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c.Set(sessionKey, s)
	c.Next()
}

func session(c *gin.Context) *Session {
	return c.MustGet(sessionKey).(*Session)
}

// tableRef maps a path segment to a service reference; numeric segments
// address a table by id.
func tableRef(c *gin.Context) string {
	return refParam(c.Param("table"))
}

func refParam(p string) string {
	if _, err := strconv.Atoi(p); err == nil {
		return "#" + p
	}
	return p
}

// failFor maps service errors onto status codes.
func failFor(c *gin.Context, err error, message string) {
	var fieldErr *schema.FieldError
	var validationErr *schema.ValidationError
	switch {
	case errors.Is(err, schema.ErrTableNotFound),
		errors.Is(err, schema.ErrFieldNotFound),
		errors.Is(err, schema.ErrRelationshipNotFound):
		Fail(c, http.StatusNotFound, err, message, nil)
	case errors.As(err, &fieldErr):
		Fail(c, http.StatusConflict, err, message, nil)
	case errors.As(err, &validationErr):
		Fail(c, http.StatusUnprocessableEntity, err, "Schema has validation errors", toPrimaryReport(validationErr.Report))
	default:
		Fail(c, http.StatusBadRequest, err, message, nil)
	}
}

func toPrimaryReport(r schema.Report) *primary.ValidationReport {
	return &primary.ValidationReport{
		Valid:    !r.HasErrors(),
		Errors:   toProblems(r.Errors()),
		Warnings: toProblems(r.Warnings()),
	}
}

func toProblems(problems []schema.Problem) []*primary.Problem {
	out := make([]*primary.Problem, len(problems))
	for i, p := range problems {
		out[i] = &primary.Problem{Severity: string(p.Severity), Table: p.Table, Field: p.Field, Message: p.Message}
	}
	return out
}

// ============================================================================
// Sessions
// ============================================================================

// CreateSession starts a session with an empty schema.
func (h *Handler) CreateSession(c *gin.Context) {
	s := h.sessions.Create()
	current, err := s.service.Describe(c.Request.Context())
	if err != nil {
		failFor(c, err, "Error while creating the session")
		return
	}
	Success(c, http.StatusCreated, gin.H{"id": s.ID, "schema": current}, "Session created successfully")
}

// GetSession returns the session's schema.
func (h *Handler) GetSession(c *gin.Context) {
	s := session(c)
	current, err := s.service.Describe(c.Request.Context())
	if err != nil {
		failFor(c, err, "Error while reading the schema")
		return
	}
	Success(c, http.StatusOK, gin.H{"id": s.ID, "schema": current}, "")
}

// DeleteSession ends a session.
func (h *Handler) DeleteSession(c *gin.Context) {
	if !h.sessions.Delete(c.Param("id")) {
		Fail(c, http.StatusNotFound, nil, "Session not found", nil)
		return
	}
	Success(c, http.StatusOK, nil, "Session deleted successfully")
}

// ============================================================================
// Tables and fields
// ============================================================================

// AddTable appends a table.
func (h *Handler) AddTable(c *gin.Context) {
	var req primary.AddTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, err, "Invalid request body", nil)
		return
	}
	table, err := session(c).service.AddTable(c.Request.Context(), req)
	if err != nil {
		failFor(c, err, "Error while adding the table")
		return
	}
	Success(c, http.StatusCreated, table, "Table added successfully")
}

// RenameTable renames a table.
func (h *Handler) RenameTable(c *gin.Context) {
	var body struct {
		NewName string `json:"new_name"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		Fail(c, http.StatusBadRequest, err, "Invalid request body", nil)
		return
	}
	table, err := session(c).service.RenameTable(c.Request.Context(), primary.RenameTableRequest{
		Table:   tableRef(c),
		NewName: body.NewName,
	})
	if err != nil {
		failFor(c, err, "Error while renaming the table")
		return
	}
	Success(c, http.StatusOK, table, "Table renamed successfully")
}

// DeleteTable removes a table.
func (h *Handler) DeleteTable(c *gin.Context) {
	if err := session(c).service.DeleteTable(c.Request.Context(), tableRef(c)); err != nil {
		failFor(c, err, "Error while deleting the table")
		return
	}
	Success(c, http.StatusOK, nil, "Table deleted successfully")
}

// AddField appends a field.
func (h *Handler) AddField(c *gin.Context) {
	var req primary.AddFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, err, "Invalid request body", nil)
		return
	}
	req.Table = tableRef(c)
	field, err := session(c).service.AddField(c.Request.Context(), req)
	if err != nil {
		failFor(c, err, "Error while adding the field")
		return
	}
	Success(c, http.StatusCreated, field, "Field added successfully")
}

// UpdateField changes a field.
func (h *Handler) UpdateField(c *gin.Context) {
	var req primary.UpdateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, err, "Invalid request body", nil)
		return
	}
	req.Table = tableRef(c)
	req.Field = refParam(c.Param("field"))
	field, err := session(c).service.UpdateField(c.Request.Context(), req)
	if err != nil {
		failFor(c, err, "Error while updating the field")
		return
	}
	Success(c, http.StatusOK, field, "Field updated successfully")
}

// DeleteField removes a field.
func (h *Handler) DeleteField(c *gin.Context) {
	err := session(c).service.DeleteField(c.Request.Context(), tableRef(c), refParam(c.Param("field")))
	if err != nil {
		failFor(c, err, "Error while deleting the field")
		return
	}
	Success(c, http.StatusOK, nil, "Field deleted successfully")
}

// ============================================================================
// Relationships
// ============================================================================

// AddRelationship appends a manual relationship.
func (h *Handler) AddRelationship(c *gin.Context) {
	var req primary.AddRelationshipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, err, "Invalid request body", nil)
		return
	}
	req.Table = tableRef(c)
	table, err := session(c).service.AddRelationship(c.Request.Context(), req)
	if err != nil {
		failFor(c, err, "Error while adding the relationship")
		return
	}
	Success(c, http.StatusCreated, table, "Relationship added successfully")
}

// UpdateRelationship retargets a manual relationship.
func (h *Handler) UpdateRelationship(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		Fail(c, http.StatusBadRequest, err, "Invalid relationship index", nil)
		return
	}
	var body struct {
		Target string `json:"target"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		Fail(c, http.StatusBadRequest, err, "Invalid request body", nil)
		return
	}
	table, err := session(c).service.UpdateRelationship(c.Request.Context(), primary.UpdateRelationshipRequest{
		Table:  tableRef(c),
		Kind:   c.Param("kind"),
		Index:  index,
		Target: body.Target,
	})
	if err != nil {
		failFor(c, err, "Error while updating the relationship")
		return
	}
	Success(c, http.StatusOK, table, "Relationship updated successfully")
}

// DeleteRelationship removes a manual relationship.
func (h *Handler) DeleteRelationship(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		Fail(c, http.StatusBadRequest, err, "Invalid relationship index", nil)
		return
	}
	table, err := session(c).service.DeleteRelationship(c.Request.Context(), primary.DeleteRelationshipRequest{
		Table: tableRef(c),
		Kind:  c.Param("kind"),
		Index: index,
	})
	if err != nil {
		failFor(c, err, "Error while deleting the relationship")
		return
	}
	Success(c, http.StatusOK, table, "Relationship deleted successfully")
}

// ============================================================================
// Interview
// ============================================================================

// InterviewState is the interview as seen by the client.
type InterviewState struct {
	Step     string             `json:"step"`
	Question string             `json:"question"`
	Answers  interview.Answers  `json:"answers"`
	History  []string           `json:"history"`
	Done     bool               `json:"done"`
	Outcome  *interview.Outcome `json:"outcome,omitempty"`
}

func interviewState(iv *interview.Interview) InterviewState {
	state := InterviewState{
		Step:     iv.Step().String(),
		Question: iv.Question(),
		Answers:  iv.Answers(),
		History:  []string{},
		Done:     iv.Done(),
	}
	for _, s := range iv.History() {
		state.History = append(state.History, s.String())
	}
	if o, err := iv.Outcome(); err == nil {
		state.Outcome = &o
	}
	return state
}

// StartInterview resets the interview, optionally answering the names.
func (h *Handler) StartInterview(c *gin.Context) {
	var body struct {
		TableA string `json:"table_a"`
		TableB string `json:"table_b"`
	}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			Fail(c, http.StatusBadRequest, err, "Invalid request body", nil)
			return
		}
	}

	s := session(c)
	s.interview.Reset()
	if body.TableA != "" || body.TableB != "" {
		if err := s.interview.SubmitNames(body.TableA, body.TableB); err != nil {
			Fail(c, http.StatusUnprocessableEntity, err, "Invalid table names", interviewState(s.interview))
			return
		}
	}
	Success(c, http.StatusOK, interviewState(s.interview), "Interview started")
}

// GetInterview returns the interview state.
func (h *Handler) GetInterview(c *gin.Context) {
	Success(c, http.StatusOK, interviewState(session(c).interview), "")
}

// AnswerInterview answers the current question. The body carries the
// member for the current step: table_a/table_b, cardinality or
// can_exist_alone.
func (h *Handler) AnswerInterview(c *gin.Context) {
	var body struct {
		TableA        string `json:"table_a"`
		TableB        string `json:"table_b"`
		Cardinality   string `json:"cardinality"`
		CanExistAlone *bool  `json:"can_exist_alone"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		Fail(c, http.StatusBadRequest, err, "Invalid request body", nil)
		return
	}

	iv := session(c).interview
	var err error
	switch iv.Step() {
	case interview.StepNamingTables:
		err = iv.SubmitNames(body.TableA, body.TableB)
	case interview.StepCardinalityAtoB, interview.StepCardinalityBtoA:
		var card interview.Cardinality
		if card, err = interview.ParseCardinality(body.Cardinality); err == nil {
			err = iv.SubmitCardinality(card)
		}
	case interview.StepDependency:
		if body.CanExistAlone == nil {
			err = errors.New("can_exist_alone is required")
		} else {
			err = iv.SubmitDependency(*body.CanExistAlone)
		}
	default:
		err = errors.New("interview is resolved; apply it or go back")
	}
	if err != nil {
		Fail(c, http.StatusUnprocessableEntity, err, "Answer rejected", interviewState(iv))
		return
	}
	Success(c, http.StatusOK, interviewState(iv), "")
}

// BackInterview returns to the previous question.
func (h *Handler) BackInterview(c *gin.Context) {
	iv := session(c).interview
	if !iv.Back() {
		Fail(c, http.StatusConflict, nil, "Already at the first question", interviewState(iv))
		return
	}
	Success(c, http.StatusOK, interviewState(iv), "")
}

// ApplyInterview writes the resolved outcome into the schema and resets
// the interview.
func (h *Handler) ApplyInterview(c *gin.Context) {
	s := session(c)
	outcome, err := s.interview.Outcome()
	if err != nil {
		Fail(c, http.StatusConflict, err, "Interview is not complete", interviewState(s.interview))
		return
	}
	current, err := s.service.ApplyInterview(c.Request.Context(), primary.ApplyInterviewRequest{
		Kind:     string(outcome.Kind),
		Owner:    outcome.Owner,
		Owned:    outcome.Owned,
		Nullable: outcome.Nullable,
		Unique:   outcome.Unique,
	})
	if err != nil {
		failFor(c, err, "Error while applying the relationship")
		return
	}
	s.interview.Reset()
	Success(c, http.StatusOK, gin.H{"outcome": outcome, "schema": current}, outcome.Summary())
}

// ============================================================================
// Validation, generation and events
// ============================================================================

// Validate reports every problem in the schema.
func (h *Handler) Validate(c *gin.Context) {
	report, err := session(c).service.Validate(c.Request.Context())
	if err != nil {
		failFor(c, err, "Error while validating the schema")
		return
	}
	Success(c, http.StatusOK, report, "")
}

// Generate renders the three artifacts.
func (h *Handler) Generate(c *gin.Context) {
	var req primary.GenerateRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			Fail(c, http.StatusBadRequest, err, "Invalid request body", nil)
			return
		}
	}
	resp, err := session(c).service.Generate(c.Request.Context(), req)
	if err != nil {
		failFor(c, err, "Error while generating code")
		return
	}
	Success(c, http.StatusOK, resp, "Code generated successfully")
}

// Events returns the session's recent events, optionally after ?since=seq.
func (h *Handler) Events(c *gin.Context) {
	bus := session(c).bus
	since := c.Query("since")
	if since == "" {
		Success(c, http.StatusOK, bus.Recent(), "")
		return
	}
	seq, err := strconv.ParseUint(since, 10, 64)
	if err != nil {
		Fail(c, http.StatusBadRequest, err, "Invalid since parameter", nil)
		return
	}
	Success(c, http.StatusOK, bus.Since(seq), "")
}

// ============================================================================
// Exports
// ============================================================================

// ListExports returns saved exports without content.
func (h *Handler) ListExports(c *gin.Context) {
	if h.sessions.exports == nil {
		Fail(c, http.StatusNotFound, nil, "Export ledger is not enabled", nil)
		return
	}
	records, err := h.sessions.exports.List(c.Request.Context())
	if err != nil {
		Fail(c, http.StatusInternalServerError, err, "Error while listing exports", nil)
		return
	}
	exports := make([]*primary.Export, len(records))
	for i, r := range records {
		exports[i] = &primary.Export{ID: r.ID, Label: r.Label, TableCount: r.TableCount, CreatedAt: r.CreatedAt}
	}
	Success(c, http.StatusOK, exports, "")
}

// GetExport returns one saved export with content.
func (h *Handler) GetExport(c *gin.Context) {
	if h.sessions.exports == nil {
		Fail(c, http.StatusNotFound, nil, "Export ledger is not enabled", nil)
		return
	}
	r, err := h.sessions.exports.GetByID(c.Request.Context(), c.Param("exportId"))
	if err != nil {
		Fail(c, http.StatusNotFound, err, "Export not found", nil)
		return
	}
	Success(c, http.StatusOK, &primary.Export{
		ID:          r.ID,
		Label:       r.Label,
		TableCount:  r.TableCount,
		Models:      r.Models,
		Serializers: r.Serializers,
		Routes:      r.Routes,
		CreatedAt:   r.CreatedAt,
	}, "")
}

// StreamEvents sends the session's events as server-sent events until the
// client goes away. Retained events after ?since=seq are replayed first.
// The stream does not hold the session lock. Clients reconnect with
// ?since= when the server's write timeout ends a stream.
func (h *Handler) StreamEvents(c *gin.Context) {
	s, ok := h.sessions.Get(c.Param("id"))
	if !ok {
		Fail(c, http.StatusNotFound, nil, "Session not found", nil)
		return
	}
	var since uint64
	if v := c.Query("since"); v != "" {
		seq, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			Fail(c, http.StatusBadRequest, err, "Invalid since parameter", nil)
			return
		}
		since = seq
	}

	live := make(chan events.Event, streamBuffer)
	unsubscribe := s.bus.Subscribe(func(e events.Event) {
		select {
		case live <- e:
		default:
			// slow reader; it can catch up with ?since=
		}
	})
	defer unsubscribe()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	last := since
	for _, e := range s.bus.Since(since) {
		c.SSEvent(string(e.Kind), e)
		last = e.Seq
	}
	c.Writer.Flush()

	for {
		select {
		case e := <-live:
			if e.Seq <= last {
				continue
			}
			c.SSEvent(string(e.Kind), e)
			c.Writer.Flush()
			last = e.Seq
		case <-c.Request.Context().Done():
			return
		}
	}
}
