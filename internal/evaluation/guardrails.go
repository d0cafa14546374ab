package evaluation

// PanelGuardrails bounds the specialist panel built during evaluation so the
// ranking mirrors what the orchestrator would actually consult.
type PanelGuardrails struct {
	MinConfidence float64
	MaxPanelSize  int
}

// NewPanelGuardrails applies defaults for unset fields.
func NewPanelGuardrails(config PanelGuardrails) *PanelGuardrails {
	if config.MaxPanelSize <= 0 {
		config.MaxPanelSize = 3
	}
	return &config
}

// ShouldSeat reports whether a specialty's routing confidence clears the bar.
func (g *PanelGuardrails) ShouldSeat(confidence float64) bool {
	return confidence > g.MinConfidence
}

// LimitPanel caps the ranked panel at the configured size.
func (g *PanelGuardrails) LimitPanel(specialties []string) []string {
	if len(specialties) > g.MaxPanelSize {
		return specialties[:g.MaxPanelSize]
	}
	return specialties
}
