package errors

import (
	"net/http"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// grpcDetails collects the standard error details a server may attach.
type grpcDetails struct {
	retryDelay   *errdetails.RetryInfo
	badRequest   *errdetails.BadRequest
	errorInfo    *errdetails.ErrorInfo
	requestInfo  *errdetails.RequestInfo
	quotaFailure *errdetails.QuotaFailure
}

func collectDetails(st *status.Status) grpcDetails {
	var d grpcDetails
	for _, detail := range st.Details() {
		switch v := detail.(type) {
		case *errdetails.RetryInfo:
			d.retryDelay = v
		case *errdetails.BadRequest:
			d.badRequest = v
		case *errdetails.ErrorInfo:
			d.errorInfo = v
		case *errdetails.RequestInfo:
			d.requestInfo = v
		case *errdetails.QuotaFailure:
			d.quotaFailure = v
		}
	}
	return d
}

// FromGRPC converts an error returned by a gRPC client call. Errors that carry
// no gRPC status become Network errors; a nil or OK status yields nil.
func FromGRPC(err error) Error {
	if err == nil {
		return nil
	}
	if e, ok := As(err); ok {
		return e
	}
	st, ok := status.FromError(err)
	if !ok {
		return FromTransport(err, "")
	}
	if st.Code() == codes.OK {
		return nil
	}

	details := collectDetails(st)
	var b *Builder
	switch st.Code() {
	case codes.Unavailable:
		b = New(KindServiceUnavailable)
		if details.retryDelay != nil && details.retryDelay.GetRetryDelay() != nil {
			b.RetryAfter(details.retryDelay.GetRetryDelay().AsDuration())
		}
	case codes.DeadlineExceeded:
		b = New(KindTimeout)
	case codes.Canceled:
		b = New(KindTimeout).With("canceled", "true")
	case codes.ResourceExhausted:
		b = New(KindRateLimit)
		if details.retryDelay != nil && details.retryDelay.GetRetryDelay() != nil {
			b.Window(details.retryDelay.GetRetryDelay().AsDuration())
		}
		if details.quotaFailure != nil && len(details.quotaFailure.GetViolations()) > 0 {
			b.With("quota_subject", details.quotaFailure.GetViolations()[0].GetSubject())
		}
	case codes.Unauthenticated:
		b = New(KindAuthentication).Code(CodeUnauthenticated).Message(st.Message())
	case codes.PermissionDenied:
		b = New(KindAuthentication).Code(CodeForbidden).Message(st.Message())
	case codes.InvalidArgument, codes.OutOfRange:
		b = New(KindValidation).Message(st.Message())
		if details.badRequest != nil && len(details.badRequest.GetFieldViolations()) > 0 {
			v := details.badRequest.GetFieldViolations()[0]
			b.Field(v.GetField())
			if v.GetDescription() != "" {
				b.Message(v.GetDescription())
			}
		}
	case codes.FailedPrecondition, codes.Aborted:
		b = New(KindBusiness).Message(st.Message())
	case codes.AlreadyExists:
		b = New(KindBusiness).Code(CodeConflict).Message(st.Message())
	case codes.NotFound:
		b = New(KindAPI).Status(http.StatusNotFound).Message(st.Message()).Source(err)
	default:
		b = New(KindInternal).Message(st.Message()).Source(err)
	}

	b.With("grpc_code", st.Code().String())
	if details.errorInfo != nil {
		b.With("reason", details.errorInfo.GetReason())
		if domain := details.errorInfo.GetDomain(); domain != "" {
			b.With("domain", domain)
		}
		b.WithFields(details.errorInfo.GetMetadata())
	}
	if details.requestInfo != nil {
		b.RequestID(details.requestInfo.GetRequestId())
	}
	return b.Build()
}
