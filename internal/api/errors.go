package api

import (
	"errors"
	"fmt"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/launchserver/internal/common"
)

var grpcCodes = map[string]codes.Code{
	common.CodeInvalidCredentials:   codes.Unauthenticated,
	common.CodeNeedsTwoFactor:       codes.FailedPrecondition,
	common.CodeUnsupportedProofType: codes.InvalidArgument,
	common.CodeUserNotFound:         codes.NotFound,
	common.CodeProviderUnavailable:  codes.Unavailable,
	common.CodeHardwareBanned:       codes.PermissionDenied,
	common.CodeTokenExpired:         codes.Unauthenticated,
	common.CodeAccessDenied:         codes.PermissionDenied,
	common.CodeRateLimitExceeded:    codes.ResourceExhausted,
	common.CodePayloadTooLarge:      codes.ResourceExhausted,
	common.CodeInvalidFormat:        codes.InvalidArgument,
	common.CodeStorageFailure:       codes.Internal,
}

// StatusError converts err into a gRPC status carrying an ErrorInfo whose
// Reason is the stable error code. The message is the sentinel text only so
// store and transport details stay in the server log.
func StatusError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	reason := common.Code(err)
	code, ok := grpcCodes[reason]
	if !ok {
		code = codes.Internal
	}

	st := status.New(code, common.FromCode(reason).Error())
	detailed, derr := st.WithDetails(&errdetails.ErrorInfo{
		Reason: reason,
		Domain: common.ErrorDomain,
	})
	if derr != nil {
		return st.Err()
	}
	return detailed.Err()
}

// FromStatus maps a gRPC error back onto the common taxonomy. Errors without
// an ErrorInfo from this service are returned unchanged.
func FromStatus(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	for _, d := range st.Details() {
		info, ok := d.(*errdetails.ErrorInfo)
		if !ok || info.GetDomain() != common.ErrorDomain {
			continue
		}
		sentinel := common.FromCode(info.GetReason())
		if sentinel.Error() == st.Message() {
			return sentinel
		}
		return fmt.Errorf("%w: %s", sentinel, st.Message())
	}
	if st.Code() == codes.Unauthenticated && st.Message() == common.ErrTokenExpired.Error() {
		return common.ErrTokenExpired
	}
	return err
}

// IsTokenExpired reports whether err tells the client to refresh or log in
// again.
func IsTokenExpired(err error) bool {
	return errors.Is(FromStatus(err), common.ErrTokenExpired)
}
