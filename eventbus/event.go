// Package eventbus carries structured gateway events from producers (the
// orchestration loop, the command handler) to subscribers (the structured
// logger, the event archive, the MQTT sink) without coupling them to one
// another.
package eventbus

// Severity mirrors the logger's severity scale so an event's severity can
// drive both log formatting and filtering decisions downstream.
type Severity uint8

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarn
	SeverityAlarm
	SeverityError
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "DEBUG"
	case SeverityInfo:
		return "INFO"
	case SeverityWarn:
		return "WARN"
	case SeverityAlarm:
		return "ALARM"
	case SeverityError:
		return "ERROR"
	case SeverityFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// Category groups events for category-scoped subscriptions.
type Category uint8

const (
	CategoryTracking Category = iota
	CategoryThreat
	CategoryIFF
	CategoryEngagement
	CategoryNetwork
	CategoryHealth
	CategoryControl
)

func (c Category) String() string {
	switch c {
	case CategoryTracking:
		return "TRACKING"
	case CategoryThreat:
		return "THREAT"
	case CategoryIFF:
		return "IFF"
	case CategoryEngagement:
		return "ENGAGEMENT"
	case CategoryNetwork:
		return "NETWORK"
	case CategoryHealth:
		return "HEALTH"
	case CategoryControl:
		return "CONTROL"
	default:
		return "UNKNOWN"
	}
}

// ID enumerates the concrete event names the gateway emits.
type ID uint16

const (
	EvtTrackNew         ID = 0x0100
	EvtTrackUpdate      ID = 0x0101
	EvtTrackLost        ID = 0x0102
	EvtTrackClassify    ID = 0x0103
	EvtThreatEval       ID = 0x0200
	EvtThreatCritical   ID = 0x0201
	EvtIFFResponse      ID = 0x0300
	EvtIFFFoe           ID = 0x0301
	EvtEngageStart      ID = 0x0400
	EvtEngageCease      ID = 0x0401
	EvtWeaponStatus     ID = 0x0402
	EvtAmmoLow          ID = 0x0403
	EvtSeqGap           ID = 0x0500
	EvtSeqReorder       ID = 0x0501
	EvtFrameMalformed   ID = 0x0502
	EvtCrcFail          ID = 0x0503
	EvtSourceOnline     ID = 0x0504
	EvtSourceTimeout    ID = 0x0505
	EvtHeartbeatOK      ID = 0x0600
	EvtHeartbeatDegrade ID = 0x0601
	EvtHeartbeatError   ID = 0x0602
	EvtConfigChange     ID = 0x0700
)

var idNames = map[ID]string{
	EvtTrackNew:         "EVT_TRACK_NEW",
	EvtTrackUpdate:      "EVT_TRACK_UPDATE",
	EvtTrackLost:        "EVT_TRACK_LOST",
	EvtTrackClassify:    "EVT_TRACK_CLASSIFY",
	EvtThreatEval:       "EVT_THREAT_EVAL",
	EvtThreatCritical:   "EVT_THREAT_CRITICAL",
	EvtIFFResponse:      "EVT_IFF_RESPONSE",
	EvtIFFFoe:           "EVT_IFF_FOE",
	EvtEngageStart:      "EVT_ENGAGE_START",
	EvtEngageCease:      "EVT_ENGAGE_CEASE",
	EvtWeaponStatus:     "EVT_WEAPON_STATUS",
	EvtAmmoLow:          "EVT_AMMO_LOW",
	EvtSeqGap:           "EVT_SEQ_GAP",
	EvtSeqReorder:       "EVT_SEQ_REORDER",
	EvtFrameMalformed:   "EVT_FRAME_MALFORMED",
	EvtCrcFail:          "EVT_CRC_FAIL",
	EvtSourceOnline:     "EVT_SOURCE_ONLINE",
	EvtSourceTimeout:    "EVT_SOURCE_TIMEOUT",
	EvtHeartbeatOK:      "EVT_HEARTBEAT_OK",
	EvtHeartbeatDegrade: "EVT_HEARTBEAT_DEGRADE",
	EvtHeartbeatError:   "EVT_HEARTBEAT_ERROR",
	EvtConfigChange:     "EVT_CONFIG_CHANGE",
}

func (id ID) String() string {
	if name, ok := idNames[id]; ok {
		return name
	}
	return "EVT_UNKNOWN"
}

// Record is one event flowing through the bus.
type Record struct {
	ID           ID
	Category     Category
	Severity     Severity
	TimestampNs  uint64
	Detail       string
}
