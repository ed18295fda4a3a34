// Package workflow implements the prediction workflow state machine:
// Form -> Loading -> Results. The controller owns the transition table,
// the single-flight submit guard, and the return-to-form-on-error policy.
//
// The controller is written for a cooperative event loop (the TUI): all
// mutating methods are called from one goroutine. Run is the only method
// intended to execute on a worker goroutine; it touches no controller
// state and reports back through an Outcome that Apply consumes.
package workflow

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"cropvision/internal/form"
	"cropvision/internal/prediction"
)

// State identifies the current workflow phase.
type State int

const (
	StateForm State = iota
	StateLoading
	StateResults
)

func (s State) String() string {
	switch s {
	case StateForm:
		return "form"
	case StateLoading:
		return "loading"
	case StateResults:
		return "results"
	default:
		return "unknown"
	}
}

// Client is the slice of the prediction client the controller depends on.
type Client interface {
	Predict(ctx context.Context, req form.Request) (*prediction.Result, error)
	DownloadReport(ctx context.Context, req form.Request) ([]byte, error)
}

// Task is one generation-tagged fetch. It is handed out by Submit and
// executed by Run.
type Task struct {
	Generation uint64
	Request    form.Request
}

// Outcome is the terminal value of a Task. Exactly one of
// (Result+Report) or Err is set.
type Outcome struct {
	Generation uint64
	Request    form.Request
	Result     *prediction.Result
	Report     []byte
	Err        error
}

// Controller drives the workflow.
type Controller struct {
	schema form.Schema
	opts   form.Options
	client Client
	logger *zap.Logger

	state      State
	fields     form.Fields
	request    form.Request
	result     *prediction.Result
	report     []byte
	notice     string
	generation uint64
}

// New creates a controller in the Form state.
func New(schema form.Schema, opts form.Options, client Client, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		schema: schema,
		opts:   opts,
		client: client,
		logger: logger.Named("workflow"),
		state:  StateForm,
	}
}

// State returns the current phase.
func (c *Controller) State() State { return c.state }

// Schema returns the catalog the controller validates against.
func (c *Controller) Schema() form.Schema { return c.schema }

// Fields returns the last entered form values. They survive a failed
// submission so the user can correct and resubmit.
func (c *Controller) Fields() form.Fields { return c.fields }

// Request returns the validated request of the current attempt.
func (c *Controller) Request() form.Request { return c.request }

// Result returns the prediction payload while in Results.
func (c *Controller) Result() *prediction.Result { return c.result }

// Report returns the eagerly fetched report artifact while in Results.
func (c *Controller) Report() []byte { return c.report }

// Notice returns the transient error message, if any.
func (c *Controller) Notice() string { return c.notice }

// ClearNotice dismisses the transient error message.
func (c *Controller) ClearNotice() { c.notice = "" }

// Submit validates the entered fields and, when they pass, transitions to
// Loading and returns the fetch task to run. Field errors leave the
// controller in Form. While a fetch is already in flight Submit is a
// no-op and returns neither a task nor errors.
func (c *Controller) Submit(fields form.Fields) (*Task, []form.FieldError) {
	if c.state == StateLoading {
		c.logger.Debug("submit ignored, fetch already in flight")
		return nil, nil
	}

	c.fields = fields
	c.notice = ""

	req, errs := c.schema.Validate(fields, c.opts)
	if len(errs) > 0 {
		c.logger.Debug("validation failed", zap.Int("violations", len(errs)))
		return nil, errs
	}

	c.state = StateLoading
	c.request = req
	c.generation++

	c.logger.Info("prediction submitted",
		zap.String("district", req.District),
		zap.String("crop", req.Crop),
		zap.String("season", req.Season),
		zap.Uint64("generation", c.generation))

	return &Task{Generation: c.generation, Request: req}, nil
}

// Run fetches the prediction and the report together. Either call failing
// fails the whole task, so Results never holds a partial payload.
func (c *Controller) Run(ctx context.Context, t *Task) Outcome {
	var (
		result *prediction.Result
		report []byte
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := c.client.Predict(ctx, t.Request)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	g.Go(func() error {
		b, err := c.client.DownloadReport(ctx, t.Request)
		if err != nil {
			return err
		}
		report = b
		return nil
	})

	if err := g.Wait(); err != nil {
		return Outcome{Generation: t.Generation, Request: t.Request, Err: err}
	}
	return Outcome{Generation: t.Generation, Request: t.Request, Result: result, Report: report}
}

// Apply consumes a task outcome and performs the Loading transition.
// Outcomes from a superseded generation, or arriving outside Loading, are
// discarded silently; Apply reports whether the outcome was consumed.
func (c *Controller) Apply(o Outcome) bool {
	if c.state != StateLoading || o.Generation != c.generation {
		c.logger.Debug("stale outcome discarded",
			zap.Uint64("outcome_generation", o.Generation),
			zap.Uint64("current_generation", c.generation),
			zap.String("state", c.state.String()))
		return false
	}

	if o.Err != nil {
		c.state = StateForm
		c.result = nil
		c.report = nil
		if prediction.IsRemote(o.Err) {
			c.notice = o.Err.Error()
		} else {
			c.notice = "Prediction request failed: " + o.Err.Error()
		}
		c.logger.Warn("prediction failed", zap.Error(o.Err))
		return true
	}

	c.state = StateResults
	c.result = o.Result
	c.report = o.Report
	c.notice = ""
	c.logger.Info("prediction succeeded",
		zap.Float64("yield_kg_per_ha", o.Result.YieldKgPerHa),
		zap.Float64("harvest_days", o.Result.HarvestDays))
	return true
}

// StartOver resets the workflow to a blank Form. Any fetch still in
// flight is orphaned; its outcome will fail the generation check in Apply.
func (c *Controller) StartOver() {
	c.state = StateForm
	c.fields = form.Fields{}
	c.request = form.Request{}
	c.result = nil
	c.report = nil
	c.notice = ""
	c.generation++
	c.logger.Debug("workflow reset")
}
