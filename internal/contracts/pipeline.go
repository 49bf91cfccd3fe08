package contracts

import (
	"fmt"
	"time"
)

// Run Stage 정의 (SSOT)
// 모든 로그, 메트릭, 리포트에서 이 상수를 사용해야 함
//
// 실행 흐름:
//   Universe → Screening → Persist → Notify

// Stage represents a run stage
type Stage string

const (
	// StageUniverse: 티커 목록 로드 (캐시 또는 지수 제공자)
	StageUniverse Stage = "UNIVERSE"

	// StageScreening: 종목별 fetch → qualify
	StageScreening Stage = "SCREENING"

	// StagePersist: 감사 로그 + 스냅샷 + 보존 정리
	StagePersist Stage = "PERSIST"

	// StageNotify: 결과 메일 발송 (선택)
	StageNotify Stage = "NOTIFY"
)

// String returns the stage name
func (s Stage) String() string {
	return string(s)
}

// AllStages returns all stages in execution order
func AllStages() []Stage {
	return []Stage{StageUniverse, StageScreening, StagePersist, StageNotify}
}

// VerdictStatus is the outcome of screening one symbol
type VerdictStatus string

const (
	VerdictSkipped   VerdictStatus = "skipped"
	VerdictQualifies VerdictStatus = "qualifies"
	VerdictRejected  VerdictStatus = "rejected"
	VerdictError     VerdictStatus = "error"
)

// Verdict is produced once per input symbol per run
type Verdict struct {
	Symbol TickerSymbol  `json:"symbol"`
	Status VerdictStatus `json:"status"`
	Reason string        `json:"reason,omitempty"` // failing rule or error text
}

// Passed reports whether the symbol qualified
func (v Verdict) Passed() bool {
	return v.Status == VerdictQualifies
}

// Line renders the verdict as one audit log entry
func (v Verdict) Line() string {
	switch v.Status {
	case VerdictSkipped:
		return fmt.Sprintf("%s - Skipped invalid ticker", v.Symbol)
	case VerdictQualifies:
		return fmt.Sprintf("%s - Qualifies", v.Symbol)
	case VerdictRejected:
		return fmt.Sprintf("%s - Does not qualify", v.Symbol)
	default:
		return fmt.Sprintf("%s - Error: %s", v.Symbol, v.Reason)
	}
}

// RunResult accumulates one screening run.
// Audit holds one verdict per input symbol in input order.
type RunResult struct {
	Qualifying []TickerSymbol `json:"qualifying"`
	Audit      []Verdict      `json:"audit"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
}

// Record appends v; a qualifying symbol is listed once, at first sight
func (r *RunResult) Record(v Verdict) {
	r.Audit = append(r.Audit, v)
	if !v.Passed() {
		return
	}
	for _, s := range r.Qualifying {
		if s == v.Symbol {
			return
		}
	}
	r.Qualifying = append(r.Qualifying, v.Symbol)
}

// Count returns how many verdicts have the given status
func (r *RunResult) Count(status VerdictStatus) int {
	n := 0
	for _, v := range r.Audit {
		if v.Status == status {
			n++
		}
	}
	return n
}

// AuditLines renders every verdict in order
func (r *RunResult) AuditLines() []string {
	lines := make([]string, len(r.Audit))
	for i, v := range r.Audit {
		lines[i] = v.Line()
	}
	return lines
}
