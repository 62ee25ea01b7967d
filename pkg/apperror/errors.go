package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can map it to a response without
// inspecting messages.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidBody
	KindUnsupportedMediaType
	KindConflictingLogin
	KindNotFound
	KindUnauthorized
	KindUploadFailed
	KindPartialFailure
	KindInconsistentAssetRecord
	KindNoImageSet
	KindBusy
	KindInternal
)

var kindNames = map[Kind]string{
	KindUnknown:                 "unknown",
	KindInvalidBody:             "invalid_body",
	KindUnsupportedMediaType:    "unsupported_media_type",
	KindConflictingLogin:        "conflicting_login",
	KindNotFound:                "not_found",
	KindUnauthorized:            "unauthorized",
	KindUploadFailed:            "upload_failed",
	KindPartialFailure:          "partial_failure",
	KindInconsistentAssetRecord: "inconsistent_asset_record",
	KindNoImageSet:              "no_image_set",
	KindBusy:                    "busy",
	KindInternal:                "internal",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is the single error type returned by services. RemoteID and AssetID
// are set when a failure leaves an asset behind that needs out-of-band cleanup.
type Error struct {
	Kind     Kind
	Message  string
	RemoteID string
	AssetID  string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so the sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels, one per kind.
var (
	ErrInvalidBody             = &Error{Kind: KindInvalidBody, Message: "invalid body"}
	ErrUnsupportedMediaType    = &Error{Kind: KindUnsupportedMediaType, Message: "unsupported media type"}
	ErrConflictingLogin        = &Error{Kind: KindConflictingLogin, Message: "login already taken"}
	ErrNotFound                = &Error{Kind: KindNotFound, Message: "not found"}
	ErrUnauthorized            = &Error{Kind: KindUnauthorized, Message: "unauthorized"}
	ErrUploadFailed            = &Error{Kind: KindUploadFailed, Message: "upload failed"}
	ErrPartialFailure          = &Error{Kind: KindPartialFailure, Message: "partial failure"}
	ErrInconsistentAssetRecord = &Error{Kind: KindInconsistentAssetRecord, Message: "inconsistent asset record"}
	ErrNoImageSet              = &Error{Kind: KindNoImageSet, Message: "no image set"}
	ErrBusy                    = &Error{Kind: KindBusy, Message: "resource busy"}
	ErrInternal                = &Error{Kind: KindInternal, Message: "internal error"}
)

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// Orphan reports a partial failure that left a remote object without a
// consistent local record.
func Orphan(msg, remoteID, assetID string, err error) *Error {
	return &Error{Kind: KindPartialFailure, Message: msg, RemoteID: remoteID, AssetID: assetID, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, KindUnknown otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// MessageOf returns the message of the first *Error in err's chain.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
