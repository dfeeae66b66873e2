package grpcapi

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"

	"golang.org/x/exp/slog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/xtding233/spin-wheel/internal/lib/logger/sl"
	"github.com/xtding233/spin-wheel/internal/session"
	"github.com/xtding233/spin-wheel/internal/share"
	"github.com/xtding233/spin-wheel/internal/wheel"
)

// Sessions hands out live wheel sessions.
type Sessions interface {
	Get(ctx context.Context, id string) (*session.Session, error)
}

// Service implements WheelServiceServer on top of wheel sessions.
type Service struct {
	log      *slog.Logger
	sessions Sessions
}

func NewService(log *slog.Logger, sessions Sessions) *Service {
	return &Service{log: sl.OrDiscard(log), sessions: sessions}
}

var _ WheelServiceServer = (*Service)(nil)

func (s *Service) session(ctx context.Context, id string) (*session.Session, error) {
	if strings.TrimSpace(id) == "" {
		return nil, status.Error(codes.InvalidArgument, "wheel_id is required")
	}
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, toStatus(err)
	}
	return sess, nil
}

func (s *Service) view(ctx context.Context, sess *session.Session) (*structpb.Struct, error) {
	v, err := sess.View(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(v)
}

func (s *Service) GetWheel(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	sess, err := s.session(ctx, in.GetValue())
	if err != nil {
		return nil, err
	}
	return s.view(ctx, sess)
}

func (s *Service) AddOption(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	sess, err := s.session(ctx, stringField(in, "wheel_id"))
	if err != nil {
		return nil, err
	}
	o, err := sess.AddOption(ctx, stringField(in, "text"))
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(o)
}

func (s *Service) RemoveOption(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	sess, err := s.session(ctx, stringField(in, "wheel_id"))
	if err != nil {
		return nil, err
	}
	if err := sess.RemoveOption(ctx, stringField(in, "option_id")); err != nil {
		return nil, toStatus(err)
	}
	return s.view(ctx, sess)
}

func (s *Service) SetWeight(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	sess, err := s.session(ctx, stringField(in, "wheel_id"))
	if err != nil {
		return nil, err
	}
	w := in.GetFields()["weight"].GetNumberValue()
	if w != math.Trunc(w) || w < 1 || w > math.MaxInt32 {
		return nil, status.Error(codes.InvalidArgument, "weight must be a positive integer")
	}
	o, err := sess.SetWeight(ctx, stringField(in, "option_id"), int(w))
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(o)
}

// Spin blocks until the wheel settles and returns the outcome.
func (s *Service) Spin(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	sess, err := s.session(ctx, in.GetValue())
	if err != nil {
		return nil, err
	}
	ticket, err := sess.Spin(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	out, err := ticket.Wait(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(out)
}

func (s *Service) ExportShareToken(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	sess, err := s.session(ctx, in.GetValue())
	if err != nil {
		return nil, err
	}
	tok, err := sess.ExportShareToken(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.String(tok), nil
}

func (s *Service) ImportShareToken(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	sess, err := s.session(ctx, stringField(in, "wheel_id"))
	if err != nil {
		return nil, err
	}
	if _, err := sess.ImportShareToken(ctx, stringField(in, "token")); err != nil {
		return nil, toStatus(err)
	}
	return s.view(ctx, sess)
}

func stringField(in *structpb.Struct, name string) string {
	return in.GetFields()[name].GetStringValue()
}

// toStruct converts v to a Struct through its JSON form.
func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	st, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return st, nil
}

// toStatus maps domain errors onto gRPC codes.
func toStatus(err error) error {
	var verr *wheel.ValidationError
	switch {
	case errors.As(err, &verr) && verr.Reason == "not found":
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, share.ErrDecode), errors.Is(err, wheel.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, wheel.ErrAlreadyInProgress):
		return status.Error(codes.Aborted, err.Error())
	case errors.Is(err, wheel.ErrInvalidState):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, session.ErrClosed):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
