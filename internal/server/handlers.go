package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/goliatone/go-formflow/pkg/compiler"
	"github.com/goliatone/go-formflow/pkg/export"
	"github.com/goliatone/go-formflow/pkg/formdata"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/navigation"
	"github.com/goliatone/go-formflow/pkg/openapi"
	"github.com/goliatone/go-formflow/pkg/validation"
	"github.com/goliatone/go-formflow/pkg/visibility"
)

type stepRequest struct {
	Step    model.Step    `json:"step"`
	Answers model.Answers `json:"answers"`
}

type nextRequest struct {
	Flow        model.Flow    `json:"flow"`
	Index       int           `json:"index"`
	Answers     model.Answers `json:"answers"`
	Interpreter string        `json:"interpreter,omitempty"`
}

type nextResponse struct {
	Outcome    navigation.Outcome `json:"outcome"`
	Expression string             `json:"expression"`
	Target     string             `json:"target"`
}

type evaluateRequest struct {
	Expression  string        `json:"expression"`
	Answers     model.Answers `json:"answers"`
	Interpreter string        `json:"interpreter,omitempty"`
}

type validateResponse struct {
	validation.Result
	Hidden []string `json:"hidden,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":       "healthy",
		"interpreters": len(s.interpreters),
	})
}

func (s *Server) handleCompileStep(w http.ResponseWriter, r *http.Request) {
	var req stepRequest
	if !decode(w, r, &req) {
		return
	}
	req.Step.Normalize()
	respondJSON(w, http.StatusOK, s.compile(req.Step))
}

// compile applies the configured compiler options to step.
func (s *Server) compile(step model.Step) compiler.Result {
	return compiler.Compile(step, s.cfg.CompilerOptions()...)
}

func (s *Server) handleCompileFlow(w http.ResponseWriter, r *http.Request) {
	flow, ok := decodeFlow(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"steps": compiler.CompileFlow(flow, s.cfg.CompilerOptions()...),
	})
}

func (s *Server) handleLint(w http.ResponseWriter, r *http.Request) {
	flow, ok := decodeFlow(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, validation.NewResult(validation.LintFlow(flow, s.cfg.LintOptions()...)))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	flow, ok := decodeFlow(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, export.Export(flow, export.WithCompilerOptions(s.cfg.CompilerOptions()...)))
}

func (s *Server) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	flow, ok := decodeFlow(w, r)
	if !ok {
		return
	}
	doc, err := openapi.Document(r.Context(), flow, openapi.WithCompilerOptions(s.cfg.CompilerOptions()...))
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "flow cannot be described as OpenAPI", err)
		return
	}
	respondJSON(w, http.StatusOK, doc)
}

// handleValidate reports missing answers plus schema mismatches of the
// visible answers.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req stepRequest
	if !decode(w, r, &req) {
		return
	}
	req.Step.Normalize()
	answers := formdata.Normalize(req.Step.Fields, req.Answers)

	issues := validation.ValidateStep(req.Step, answers)
	visible := model.Answers{}
	for _, field := range visibility.VisibleFields(req.Step, answers, visibility.Default) {
		if value, ok := answers[field.ID]; ok && field.Kind.Answerable() {
			visible[field.ID] = value
		}
	}
	schemaIssues, err := openapi.CheckAnswers(r.Context(), s.compile(req.Step), visible)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "schema check failed", err)
		return
	}
	for _, issue := range schemaIssues {
		// Unanswered fields are ValidateStep's concern; it also exempts
		// hidden required fields.
		if formdata.IsEmpty(visible[issue.Field]) {
			continue
		}
		issues = append(issues, issue)
	}

	respondJSON(w, http.StatusOK, validateResponse{
		Result: validation.NewResult(issues),
		Hidden: visibility.HiddenIDs(req.Step, answers, visibility.Default),
	})
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	var req nextRequest
	if !decode(w, r, &req) {
		return
	}
	req.Flow.Normalize()
	if req.Index < 0 || req.Index >= len(req.Flow.Steps) {
		respondError(w, http.StatusBadRequest, "index out of range", nil)
		return
	}
	step := req.Flow.Steps[req.Index]
	answers := formdata.Normalize(step.Fields, req.Answers)

	if issues := validation.ValidateStep(step, answers); len(issues) > 0 {
		respondJSON(w, http.StatusUnprocessableEntity, validation.NewResult(issues))
		return
	}
	if err := navigation.CheckDriver(step, answers); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "navigation driver has no answer", err)
		return
	}

	interpreter, err := s.interpreter(req.Interpreter)
	if err != nil {
		respondError(w, http.StatusBadRequest, "unknown interpreter", err)
		return
	}
	expression := navigation.BuildExpression(step.NavigationRule, step.Fields)
	target, err := interpreter.Eval(expression, answers)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "navigation expression failed", err)
		return
	}

	outcome := navigation.Resolve(target, req.Flow.Steps, req.Index)
	status := http.StatusOK
	if outcome.Kind == navigation.OutcomeTargetNotFound {
		status = http.StatusConflict
	}
	respondJSON(w, status, nextResponse{Outcome: outcome, Expression: expression, Target: target})
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Expression == "" {
		respondError(w, http.StatusBadRequest, "expression is required", nil)
		return
	}
	interpreter, err := s.interpreter(req.Interpreter)
	if err != nil {
		respondError(w, http.StatusBadRequest, "unknown interpreter", err)
		return
	}
	target, err := interpreter.Eval(req.Expression, req.Answers)
	if err != nil {
		respondError(w, http.StatusBadRequest, "expression evaluation failed", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"interpreter": interpreter.Name(),
		"target":      target,
	})
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		respondError(w, status, "invalid request body", err)
		return false
	}
	return true
}

func decodeFlow(w http.ResponseWriter, r *http.Request) (model.Flow, bool) {
	var flow model.Flow
	if !decode(w, r, &flow) {
		return model.Flow{}, false
	}
	flow.Normalize()
	return flow, true
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	response := map[string]string{
		"error": message,
	}
	if err != nil {
		response["details"] = err.Error()
	}
	respondJSON(w, status, response)
}
