package models

import (
	"encoding/json"
	"fmt"
	"time"
)

type ResultStatus string

const (
	ResultSuccess ResultStatus = "success"
	ResultError   ResultStatus = "error"
)

// AgentResult is the record of one agent invocation. It is immutable once
// created; a failed invocation carries Status == ResultError, an empty
// Content and the error string.
type AgentResult struct {
	AgentID      string       `json:"agent_id"`
	AgentType    string       `json:"agent_type"`
	AnalysisType string       `json:"analysis_type"`
	Symbol       string       `json:"symbol"`
	Status       ResultStatus `json:"status"`
	Content      AgentContent `json:"content,omitempty"`
	RawResponse  string       `json:"raw_response,omitempty"`
	Error        string       `json:"error,omitempty"`
	Timestamp    time.Time    `json:"timestamp"`
}

// resultJSON is the wire shape of AgentResult. Content carries an explicit
// kind tag so the tagged union survives a JSON round trip.
type resultJSON struct {
	AgentID      string          `json:"agent_id"`
	AgentType    string          `json:"agent_type"`
	AnalysisType string          `json:"analysis_type"`
	Symbol       string          `json:"symbol"`
	Status       ResultStatus    `json:"status"`
	ContentKind  ContentKind     `json:"content_kind,omitempty"`
	Content      json.RawMessage `json:"content,omitempty"`
	RawResponse  string          `json:"raw_response,omitempty"`
	Error        string          `json:"error,omitempty"`
	Timestamp    time.Time       `json:"timestamp"`
}

func (r *AgentResult) MarshalJSON() ([]byte, error) {
	wire := resultJSON{
		AgentID:      r.AgentID,
		AgentType:    r.AgentType,
		AnalysisType: r.AnalysisType,
		Symbol:       r.Symbol,
		Status:       r.Status,
		RawResponse:  r.RawResponse,
		Error:        r.Error,
		Timestamp:    r.Timestamp,
	}
	if r.Content != nil {
		data, err := json.Marshal(r.Content)
		if err != nil {
			return nil, err
		}
		wire.ContentKind = r.Content.Kind()
		wire.Content = data
	}
	return json.Marshal(wire)
}

func (r *AgentResult) UnmarshalJSON(data []byte) error {
	var wire resultJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*r = AgentResult{
		AgentID:      wire.AgentID,
		AgentType:    wire.AgentType,
		AnalysisType: wire.AnalysisType,
		Symbol:       wire.Symbol,
		Status:       wire.Status,
		RawResponse:  wire.RawResponse,
		Error:        wire.Error,
		Timestamp:    wire.Timestamp,
	}
	if len(wire.Content) == 0 {
		return nil
	}

	content := newContent(wire.ContentKind)
	if content == nil {
		return fmt.Errorf("unknown content kind %q", wire.ContentKind)
	}
	if err := json.Unmarshal(wire.Content, content); err != nil {
		return err
	}
	r.Content = content
	return nil
}

func newContent(kind ContentKind) AgentContent {
	switch kind {
	case KindMarket:
		return &MarketContent{}
	case KindSentiment:
		return &SentimentContent{}
	case KindNews:
		return &NewsContent{}
	case KindFundamentals:
		return &FundamentalsContent{}
	case KindResearch:
		return &ResearchContent{}
	case KindRecommendation:
		return &RecommendationContent{}
	case KindStrategy:
		return &StrategyContent{}
	case KindRiskOpinion:
		return &RiskOpinionContent{}
	case KindDecision:
		return &DecisionContent{}
	}
	return nil
}

// OK reports whether the invocation produced usable content.
func (r *AgentResult) OK() bool {
	return r != nil && r.Status == ResultSuccess
}

// ErrorResult builds the degraded record returned when an agent call fails.
func ErrorResult(agentID, agentType, analysisType, symbol string, err error) *AgentResult {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return &AgentResult{
		AgentID:      agentID,
		AgentType:    agentType,
		AnalysisType: analysisType,
		Symbol:       symbol,
		Status:       ResultError,
		Error:        msg,
		Timestamp:    time.Now(),
	}
}
