package core

// Hooks holds observation callbacks for an evaluation.
// All fields are optional - nil means no observation for that event.
// Hooks are invoked synchronously on the evaluating goroutine, so they
// should be fast to avoid stalling the stream.
type Hooks struct {
	OnGet  func()      // One input element consumed by a Get transition
	OnPut  func()      // One output produced
	OnFail func(error) // Evaluation failed (exhaustion included)
}

// EvalConfig holds configuration options for Eval.
type EvalConfig struct {
	hookSets []Hooks
}

// EvalOption is a functional option for configuring Eval.
type EvalOption func(*EvalConfig)

// WithHooks attaches hooks to an evaluation. Multiple WithHooks options
// compose in FIFO order - hooks from earlier options are invoked first.
func WithHooks(hooks Hooks) EvalOption {
	return func(c *EvalConfig) {
		c.hookSets = append(c.hookSets, hooks)
	}
}

// applyOptions applies functional options to a config.
func applyOptions(opts ...EvalOption) *EvalConfig {
	cfg := &EvalConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

// hookInvoker caches whether specific hook types exist to avoid
// repeated nil checks on every transition.
type hookInvoker struct {
	hookSets []Hooks
	hasGet   bool
	hasPut   bool
	hasFail  bool
}

func newHookInvoker(cfg *EvalConfig) *hookInvoker {
	invoker := &hookInvoker{hookSets: cfg.hookSets}
	for _, h := range cfg.hookSets {
		if h.OnGet != nil {
			invoker.hasGet = true
		}
		if h.OnPut != nil {
			invoker.hasPut = true
		}
		if h.OnFail != nil {
			invoker.hasFail = true
		}
	}
	return invoker
}

func (h *hookInvoker) invokeGet() {
	if !h.hasGet {
		return
	}
	for _, hooks := range h.hookSets {
		if hooks.OnGet != nil {
			hooks.OnGet()
		}
	}
}

func (h *hookInvoker) invokePut() {
	if !h.hasPut {
		return
	}
	for _, hooks := range h.hookSets {
		if hooks.OnPut != nil {
			hooks.OnPut()
		}
	}
}

func (h *hookInvoker) invokeFail(err error) {
	if !h.hasFail {
		return
	}
	for _, hooks := range h.hookSets {
		if hooks.OnFail != nil {
			hooks.OnFail(err)
		}
	}
}
