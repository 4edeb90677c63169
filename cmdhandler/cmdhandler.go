// Package cmdhandler implements the ASCII command surface exposed over
// the command channel: GET queries for health, stats, recent events and
// known sources, and SET for runtime-tunable knobs. Unknown verbs and
// malformed SET syntax get a Levenshtein-based "did you mean" suggestion
// appended, grounded on the nearest known command, to help an operator
// typing at a live terminal.
package cmdhandler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"

	"sentrygate/eventbus"
	"sentrygate/logx"
	"sentrygate/stats"
)

// EventEntry is one archived event as surfaced to the command channel.
type EventEntry struct {
	ID          uint16
	Name        string
	Category    string
	Severity    string
	TimestampNs uint64
	Detail      string
}

// EventSource supplies the most recent archived events for GET EVENTS.
type EventSource interface {
	Recent(n int) ([]EventEntry, error)
}

// SourceEntry summarizes one telemetry source for GET SOURCES.
type SourceEntry struct {
	SrcID      uint16
	RxCount    uint64
	Gaps       uint64
	Reorders   uint64
	Duplicates uint64
	Malformed  uint64
	LastSeq    uint32
}

// SourceLister supplies the known source set for GET SOURCES.
type SourceLister interface {
	ListSources() []SourceEntry
}

// Handler parses and executes command channel requests. It is safe for
// concurrent use by multiple connections; the components it wraps (stats,
// logger) already guard their own state.
type Handler struct {
	stats        *stats.Aggregator
	logger       *logx.Logger
	eventSource  EventSource
	sourceLister SourceLister
	config       map[string]string
	crcEnabled   bool
}

// New returns a Handler. eventSource and sourceLister may be nil, in which
// case GET EVENTS and GET SOURCES both report ERR EVENTS_DISABLED.
func New(s *stats.Aggregator, logger *logx.Logger, eventSource EventSource, sourceLister SourceLister) *Handler {
	return &Handler{
		stats:        s,
		logger:       logger,
		eventSource:  eventSource,
		sourceLister: sourceLister,
		config:       make(map[string]string),
	}
}

// CrcEnabled reports the current CRC-checking toggle, so the gateway's
// ingestion loop can be reconfigured from SET CRC=ON/OFF.
func (h *Handler) CrcEnabled() bool {
	return h.crcEnabled
}

// SetCrcEnabled seeds the CRC-checking toggle, for startup configuration
// outside of the SET CRC=ON/OFF command path.
func (h *Handler) SetCrcEnabled(enabled bool) {
	h.crcEnabled = enabled
}

var knownVerbs = []string{"GET", "SET"}
var knownGetArgs = []string{"HEALTH", "STATS", "EVENTS", "SOURCES"}
var knownSetKeys = []string{"LOG_LEVEL", "CRC"}

// Handle parses a single command line and returns the response text, with
// no trailing newline (the caller's framer adds its own delimiter).
func (h *Handler) Handle(command string) string {
	if command == "" {
		return "ERR EMPTY_COMMAND"
	}

	verb, rest := splitFirstWord(command)
	verb = strings.ToUpper(verb)
	rest = strings.TrimLeft(rest, " \t")

	switch verb {
	case "GET":
		return h.handleGet(rest)
	case "SET":
		return h.handleSet(rest)
	default:
		return suggestionError("ERR UNKNOWN_COMMAND", verb, knownVerbs)
	}
}

func (h *Handler) handleGet(args string) string {
	what := strings.ToUpper(args)

	switch what {
	case "HEALTH":
		switch h.stats.HealthRollup() {
		case stats.HealthOK:
			return "HEALTH OK"
		case stats.HealthDegraded:
			return "HEALTH DEGRADED"
		case stats.HealthError:
			return "HEALTH ERROR"
		default:
			return "HEALTH UNKNOWN"
		}

	case "STATS":
		g := h.stats.GlobalSnapshot()
		var b strings.Builder
		fmt.Fprintf(&b, "STATS\n")
		fmt.Fprintf(&b, "rx_total=%d\n", g.RxTotal)
		fmt.Fprintf(&b, "malformed_total=%d\n", g.MalformedTotal)
		fmt.Fprintf(&b, "gap_total=%d\n", g.GapTotal)
		fmt.Fprintf(&b, "reorder_total=%d\n", g.ReorderTotal)
		fmt.Fprintf(&b, "duplicate_total=%d\n", g.DuplicateTotal)
		fmt.Fprintf(&b, "crc_fail_total=%d", g.CrcFailTotal)
		return b.String()

	case "SOURCES":
		if h.sourceLister == nil {
			return "ERR EVENTS_DISABLED"
		}
		entries := h.sourceLister.ListSources()
		var b strings.Builder
		fmt.Fprintf(&b, "SOURCES\n")
		for i, e := range entries {
			if i > 0 {
				b.WriteByte('\n')
			}
			fmt.Fprintf(&b, "%d %d %d %d %d %d %d",
				e.SrcID, e.RxCount, e.Gaps, e.Reorders, e.Duplicates, e.Malformed, e.LastSeq)
		}
		return b.String()

	default:
		if strings.HasPrefix(what, "EVENTS") {
			return h.handleGetEvents(what)
		}
		return suggestionError("ERR UNKNOWN_COMMAND", what, knownGetArgs)
	}
}

func (h *Handler) handleGetEvents(what string) string {
	if h.eventSource == nil {
		return "ERR EVENTS_DISABLED"
	}

	n := 20
	if fields := strings.Fields(what); len(fields) == 2 {
		parsed, err := strconv.Atoi(fields[1])
		if err != nil || parsed <= 0 {
			return "ERR INVALID_EVENT_COUNT"
		}
		n = parsed
	}

	events, err := h.eventSource.Recent(n)
	if err != nil {
		return "ERR EVENTS_QUERY_FAILED"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "EVENTS\n")
	for i, e := range events {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d %s %s %s %s", e.TimestampNs, e.Category, e.Severity, e.Name, e.Detail)
	}
	return b.String()
}

func (h *Handler) handleSet(args string) string {
	eqPos := strings.IndexByte(args, '=')
	if eqPos < 0 {
		return "ERR INVALID_SET_SYNTAX"
	}

	key := strings.ToUpper(strings.TrimSpace(args[:eqPos]))
	value := strings.TrimSpace(args[eqPos+1:])

	switch key {
	case "LOG_LEVEL":
		valUpper := strings.ToUpper(value)
		level, ok := logLevels[valUpper]
		if !ok {
			return "ERR INVALID_LOG_LEVEL"
		}
		h.logger.SetLevel(level)
		h.config[key] = valUpper
		return "OK LOG_LEVEL=" + valUpper

	case "CRC":
		valUpper := strings.ToUpper(value)
		switch valUpper {
		case "ON":
			h.crcEnabled = true
			h.config[key] = "ON"
			return "OK CRC=ON"
		case "OFF":
			h.crcEnabled = false
			h.config[key] = "OFF"
			return "OK CRC=OFF"
		default:
			return "ERR INVALID_CRC_VALUE"
		}

	default:
		h.config[key] = value
		return "OK " + key + "=" + value
	}
}

// Config returns the current value stored for key, or "" if unset.
func (h *Handler) Config(key string) string {
	return h.config[key]
}

var logLevels = map[string]eventbus.Severity{
	"DEBUG": eventbus.SeverityDebug,
	"INFO":  eventbus.SeverityInfo,
	"WARN":  eventbus.SeverityWarn,
	"ALARM": eventbus.SeverityAlarm,
	"ERROR": eventbus.SeverityError,
	"FATAL": eventbus.SeverityFatal,
}

func splitFirstWord(s string) (word, rest string) {
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i+1:]
}

// suggestionError appends a "did you mean X" hint to baseErr when got is
// within a small edit distance of one of the known candidates.
func suggestionError(baseErr, got string, candidates []string) string {
	best := ""
	bestDist := -1
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(got, c)
		if bestDist == -1 || d < bestDist {
			bestDist = d
			best = c
		}
	}
	if best != "" && bestDist <= 2 && got != "" {
		return fmt.Sprintf("%s (did you mean %s?)", baseErr, best)
	}
	return baseErr
}
