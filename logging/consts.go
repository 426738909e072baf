package logging

import "os"

const (
	// ServiceName is the name the logging service is registered under when wired
	// into a container.
	ServiceName = "logging"
	emptyString = ""
)

const (
	FormatPretty = "pretty"
	FormatJSON   = "json"
)

// Reserved record keys. Metadata using one of these is written as metaPrefix+key.
const (
	timestampKey = "timestamp"
	levelKey     = "level"
	messageKey   = "message"
	stackKey     = "stack"
	errorKey     = "error"
	metaPrefix   = "meta_"

	errorChainKey   = "error_chain"
	errorRootKey    = "error_root"
	errorHistoryKey = "error_history"
	errorOpsKey     = "error_ops"
	errorRootOpKey  = "error_root_op"
)

// errorKeys are reserved only on records that carry an error via Err.
var errorKeys = [...]string{errorKey, errorChainKey, errorRootKey, errorHistoryKey, errorOpsKey, errorRootOpKey}

const (
	timestampLayout = "2006-01-02 15:04:05"
	dateLayout      = "2006-01-02"
)

// Destination names. File destinations are written as <name>-YYYY-MM-DD.log.
const (
	consoleSink    = "console"
	combinedSink   = "combined"
	errorSink      = "error"
	exceptionsSink = "exceptions"
	rejectionsSink = "rejections"
)

const (
	errMsgNilConfig       = "Logging config is nil."
	errMsgNilService      = "Logger service is nil."
	errMsgConfigInvalid   = "Logging configuration is invalid."
	errMsgBadTimeZone     = "Logging time zone could not be loaded."
	errMsgBadDirectory    = "Log directory could not be resolved."
	errMsgOpenDest        = "Log destination could not be opened."
	errMsgShutdownTimeout = "Logger shutdown timeout exceeded"
)

var defaultExit = os.Exit
