package message

import (
	"time"

	"github.com/danmuck/boltwire/internal/protocol/schema"
)

// Message is an outbound request. Kind is the runtime variant tag used for
// encoder dispatch; Signature is the byte written after the struct marker.
type Message interface {
	Kind() schema.MessageType
	Signature() byte
}

// AccessMode selects the cluster member class a transaction runs against.
type AccessMode int

const (
	AccessWrite AccessMode = iota
	AccessRead
)

// NoQID addresses the most recent statement in PULL and DISCARD.
const NoQID int64 = -1

// FetchAll requests every remaining record in PULL and DISCARD.
const FetchAll int64 = -1

// BoltAgent identifies the driver to the server.
type BoltAgent struct {
	Product         string
	Platform        string
	Language        string
	LanguageDetails string
}

// NotificationConfig filters the notifications the server attaches to results.
type NotificationConfig struct {
	MinimumSeverity    string
	DisabledCategories []string
}

// Hello opens a connection.
type Hello struct {
	UserAgent     string
	BoltAgent     BoltAgent
	Routing       *RoutingContext
	Auth          AuthToken
	Notifications NotificationConfig
}

// Logon authenticates an open connection.
type Logon struct {
	Auth AuthToken
}

type Logoff struct{}

type Goodbye struct{}

type Reset struct{}

// TxConfig carries the transaction options shared by RUN and BEGIN.
type TxConfig struct {
	Bookmarks        []Bookmark
	Timeout          time.Duration
	Metadata         map[string]any
	Mode             AccessMode
	Database         string
	ImpersonatedUser string
}

// Run executes a query, either auto-commit or inside an open transaction.
type Run struct {
	Query      string
	Parameters map[string]any
	Config     TxConfig
}

// Begin opens an explicit transaction.
type Begin struct {
	Config TxConfig
}

type Commit struct{}

type Rollback struct{}

// Pull streams up to N records of statement QID.
type Pull struct {
	N   int64
	QID int64
}

// Discard drops up to N records of statement QID.
type Discard struct {
	N   int64
	QID int64
}

// Route asks the server for a routing table.
type Route struct {
	RoutingContext   RoutingContext
	Bookmarks        []Bookmark
	Database         string
	ImpersonatedUser string
}

// TelemetryAPI names the driver API that issued the work.
type TelemetryAPI int64

const (
	APIManagedTransaction TelemetryAPI = iota
	APIUnmanagedTransaction
	APIAutoCommitTransaction
	APIExecuteQuery
)

// Telemetry reports which driver API is in use.
type Telemetry struct {
	API TelemetryAPI
}

// PullAll pulls every record of the latest statement.
func PullAll() Pull {
	return Pull{N: FetchAll, QID: NoQID}
}

// DiscardAll discards every record of the latest statement.
func DiscardAll() Discard {
	return Discard{N: FetchAll, QID: NoQID}
}

func (Hello) Kind() schema.MessageType     { return schema.MsgHello }
func (Logon) Kind() schema.MessageType     { return schema.MsgLogon }
func (Logoff) Kind() schema.MessageType    { return schema.MsgLogoff }
func (Goodbye) Kind() schema.MessageType   { return schema.MsgGoodbye }
func (Reset) Kind() schema.MessageType     { return schema.MsgReset }
func (Run) Kind() schema.MessageType       { return schema.MsgRun }
func (Begin) Kind() schema.MessageType     { return schema.MsgBegin }
func (Commit) Kind() schema.MessageType    { return schema.MsgCommit }
func (Rollback) Kind() schema.MessageType  { return schema.MsgRollback }
func (Discard) Kind() schema.MessageType   { return schema.MsgDiscard }
func (Pull) Kind() schema.MessageType      { return schema.MsgPull }
func (Route) Kind() schema.MessageType     { return schema.MsgRoute }
func (Telemetry) Kind() schema.MessageType { return schema.MsgTelemetry }

func (Hello) Signature() byte     { return schema.SigHello }
func (Logon) Signature() byte     { return schema.SigLogon }
func (Logoff) Signature() byte    { return schema.SigLogoff }
func (Goodbye) Signature() byte   { return schema.SigGoodbye }
func (Reset) Signature() byte     { return schema.SigReset }
func (Run) Signature() byte       { return schema.SigRun }
func (Begin) Signature() byte     { return schema.SigBegin }
func (Commit) Signature() byte    { return schema.SigCommit }
func (Rollback) Signature() byte  { return schema.SigRollback }
func (Discard) Signature() byte   { return schema.SigDiscard }
func (Pull) Signature() byte      { return schema.SigPull }
func (Route) Signature() byte     { return schema.SigRoute }
func (Telemetry) Signature() byte { return schema.SigTelemetry }
