package errors

import (
	perrors "github.com/pingcap/errors"

	"github.com/rigpool/rigpool/pb"
)

// All errors crossing package or RPC boundaries are normalized here so
// that callers can match them with Equal and the wire code stays stable.
var (
	ErrUnknown = perrors.Normalize("unknown error", perrors.RFCCodeText("rigpool:ErrUnknown"))

	// session lifecycle
	ErrUnknownSession    = perrors.Normalize("session %s is not registered", perrors.RFCCodeText("rigpool:ErrUnknownSession"))
	ErrSessionLost       = perrors.Normalize("session %s is lost: %s", perrors.RFCCodeText("rigpool:ErrSessionLost"))
	ErrHeartbeatStale    = perrors.Normalize("no heartbeat response for %s", perrors.RFCCodeText("rigpool:ErrHeartbeatStale"))
	ErrWatchActive       = perrors.Normalize("session %s already has an active watch stream", perrors.RFCCodeText("rigpool:ErrWatchActive"))
	ErrSessionClosed     = perrors.Normalize("session is closed", perrors.RFCCodeText("rigpool:ErrSessionClosed"))
	ErrInvalidServerAddr = perrors.Normalize("invalid server address %s", perrors.RFCCodeText("rigpool:ErrInvalidServerAddr"))
	ErrGrpcBuildConn     = perrors.Normalize("build grpc connection failed", perrors.RFCCodeText("rigpool:ErrGrpcBuildConn"))
	ErrNoRPCClient       = perrors.Normalize("no available rpc client", perrors.RFCCodeText("rigpool:ErrNoRPCClient"))

	// allocation
	ErrUnknownResource       = perrors.Normalize("resource %s is not in the registry", perrors.RFCCodeText("rigpool:ErrUnknownResource"))
	ErrUnknownRequest        = perrors.Normalize("request %s is not found", perrors.RFCCodeText("rigpool:ErrUnknownRequest"))
	ErrUnknownLease          = perrors.Normalize("lease %s is not found", perrors.RFCCodeText("rigpool:ErrUnknownLease"))
	ErrUnsatisfiable         = perrors.Normalize("request can never be satisfied: %s", perrors.RFCCodeText("rigpool:ErrUnsatisfiable"))
	ErrResourceDirty         = perrors.Normalize("resource %s is dirty and awaits rehabilitation", perrors.RFCCodeText("rigpool:ErrResourceDirty"))
	ErrResourceClean         = perrors.Normalize("resource %s is not dirty", perrors.RFCCodeText("rigpool:ErrResourceClean"))
	ErrRequestAlreadyGranted = perrors.Normalize("request %s is already granted", perrors.RFCCodeText("rigpool:ErrRequestAlreadyGranted"))
	ErrInvalidSpec           = perrors.Normalize("invalid resource spec: %s", perrors.RFCCodeText("rigpool:ErrInvalidSpec"))
	ErrNotLeaseOwner         = perrors.Normalize("session %s does not own lease %s", perrors.RFCCodeText("rigpool:ErrNotLeaseOwner"))
	ErrWaitTimeout           = perrors.Normalize("request %s timed out after %s", perrors.RFCCodeText("rigpool:ErrWaitTimeout"))
	ErrRequestCancelled      = perrors.Normalize("request %s was cancelled", perrors.RFCCodeText("rigpool:ErrRequestCancelled"))

	// registry
	ErrSeedConfigInvalid   = perrors.Normalize("resource seed config is invalid: %s", perrors.RFCCodeText("rigpool:ErrSeedConfigInvalid"))
	ErrDuplicateResource   = perrors.Normalize("resource %s is defined more than once", perrors.RFCCodeText("rigpool:ErrDuplicateResource"))
	ErrUnknownSubResource  = perrors.Normalize("resource %s references unknown sub resource %s", perrors.RFCCodeText("rigpool:ErrUnknownSubResource"))
	ErrRegistryUnavailable = perrors.Normalize("resource registry is unavailable", perrors.RFCCodeText("rigpool:ErrRegistryUnavailable"))

	// server config
	ErrServerConfigParseFlagSet = perrors.Normalize("parse config flag set failed", perrors.RFCCodeText("rigpool:ErrServerConfigParseFlagSet"))
	ErrServerConfigInvalidFlag  = perrors.Normalize("invalid config flag %s", perrors.RFCCodeText("rigpool:ErrServerConfigInvalidFlag"))
	ErrServerConfigUnknownItem  = perrors.Normalize("unknown config item %s", perrors.RFCCodeText("rigpool:ErrServerConfigUnknownItem"))
	ErrServerConfigDecodeFile   = perrors.Normalize("decode config file failed", perrors.RFCCodeText("rigpool:ErrServerConfigDecodeFile"))

	// metastore
	ErrMetaOpFail        = perrors.Normalize("meta operation failed", perrors.RFCCodeText("rigpool:ErrMetaOpFail"))
	ErrMetaNewClientFail = perrors.Normalize("create meta client failed", perrors.RFCCodeText("rigpool:ErrMetaNewClientFail"))
	ErrMetaEntryNotFound = perrors.Normalize("meta entry %s not found", perrors.RFCCodeText("rigpool:ErrMetaEntryNotFound"))
	ErrStartEtcdFail     = perrors.Normalize("start embedded etcd failed", perrors.RFCCodeText("rigpool:ErrStartEtcdFail"))
	ErrStartEtcdTimeout  = perrors.Normalize("start embedded etcd timeout %v", perrors.RFCCodeText("rigpool:ErrStartEtcdTimeout"))
	ErrParseURLFail      = perrors.Normalize("parse URL %s failed", perrors.RFCCodeText("rigpool:ErrParseURLFail"))
)

// Wrap generates a new error based on args and the wrapped error. It
// returns nil when the wrapped error is nil so call sites can wrap
// unconditionally.
func Wrap(rfcError *perrors.Error, err error, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return rfcError.Wrap(err).GenWithStackByArgs(args...)
}

var pbCodeToError = map[pb.ErrorCode]*perrors.Error{
	pb.ErrorCode_UnknownSession:        ErrUnknownSession,
	pb.ErrorCode_UnknownResource:       ErrUnknownResource,
	pb.ErrorCode_UnknownRequest:        ErrUnknownRequest,
	pb.ErrorCode_UnknownLease:          ErrUnknownLease,
	pb.ErrorCode_Unsatisfiable:         ErrUnsatisfiable,
	pb.ErrorCode_ResourceDirty:         ErrResourceDirty,
	pb.ErrorCode_RequestAlreadyGranted: ErrRequestAlreadyGranted,
	pb.ErrorCode_InvalidSpec:           ErrInvalidSpec,
	pb.ErrorCode_NotLeaseOwner:         ErrNotLeaseOwner,
	pb.ErrorCode_RegistryUnavailable:   ErrRegistryUnavailable,
}

// ToPBError converts an error into the representation carried inside
// RPC responses. A nil error maps to a nil message.
func ToPBError(err error) *pb.Error {
	if err == nil {
		return nil
	}
	for code, rfcErr := range pbCodeToError {
		if rfcErr.Equal(err) {
			return &pb.Error{Code: code, Message: err.Error()}
		}
	}
	return &pb.Error{Code: pb.ErrorCode_UnknownError, Message: err.Error()}
}

// FromPBError restores a typed error from its wire representation, so
// that callers on the client side can still match it with Equal.
func FromPBError(e *pb.Error) error {
	if e == nil {
		return nil
	}
	if rfcErr, ok := pbCodeToError[e.Code]; ok {
		return rfcErr.GenWithStack("%s", e.Message)
	}
	return ErrUnknown.GenWithStack("%s", e.Message)
}
