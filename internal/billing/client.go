package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/encoding"

	"github.com/jwalitptl/patient-api/internal/model"
	apperrors "github.com/jwalitptl/patient-api/pkg/errors"
	"github.com/jwalitptl/patient-api/pkg/metrics"
)

// The billing service speaks JSON-encoded gRPC, so no generated stubs are
// checked in; the method is invoked directly on the client connection.
const createBillingAccountMethod = "/billing.BillingService/CreateBillingAccount"

const codecName = "json"

type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return codecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type CreateAccountRequest struct {
	PatientID string `json:"patient_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
}

type CreateAccountResponse struct {
	AccountID string `json:"account_id"`
	Status    string `json:"status"`
}

// Client registers billing accounts for newly created patients over a
// long-lived RPC channel.
type Client interface {
	CreateBillingAccount(ctx context.Context, patientID uuid.UUID, email, name string) (*model.BillingAccountRef, error)
	Close() error
}

type Config struct {
	Host    string
	Port    int
	Timeout time.Duration
}

type grpcClient struct {
	conn    *grpc.ClientConn
	timeout time.Duration
	metrics *metrics.Metrics
}

// NewClient opens the channel to the billing service once at startup. The
// connection is plaintext, safe for concurrent use, and reused across calls.
func NewClient(cfg Config, m *metrics.Metrics, opts ...grpc.DialOption) (Client, error) {
	target := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	log.Info().Str("target", target).Msg("connecting to billing service")

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codecName)),
	}, opts...)

	conn, err := grpc.NewClient(target, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create billing client: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &grpcClient{
		conn:    conn,
		timeout: timeout,
		metrics: m,
	}, nil
}

func (c *grpcClient) CreateBillingAccount(ctx context.Context, patientID uuid.UUID, email, name string) (*model.BillingAccountRef, error) {
	// Detach from caller cancellation: an in-flight billing call runs to
	// completion so a client disconnect cannot leave the account state
	// ambiguous. The per-call timeout still bounds the round trip.
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()

	req := &CreateAccountRequest{
		PatientID: patientID.String(),
		Name:      name,
		Email:     email,
	}

	var timer *prometheus.Timer
	if c.metrics != nil {
		timer = prometheus.NewTimer(c.metrics.BillingLatency)
	}

	var resp CreateAccountResponse
	err := c.conn.Invoke(callCtx, createBillingAccountMethod, req, &resp)

	if timer != nil {
		timer.ObserveDuration()
	}

	if err != nil {
		if c.metrics != nil {
			c.metrics.BillingRequests.WithLabelValues("error").Inc()
		}
		return nil, apperrors.Unavailable("billing service unavailable", err)
	}

	if c.metrics != nil {
		c.metrics.BillingRequests.WithLabelValues("success").Inc()
	}

	log.Info().
		Str("patient_id", patientID.String()).
		Str("account_id", resp.AccountID).
		Str("status", resp.Status).
		Msg("billing account created")

	return &model.BillingAccountRef{
		AccountID: resp.AccountID,
		PatientID: patientID,
		Status:    resp.Status,
	}, nil
}

func (c *grpcClient) Close() error {
	return c.conn.Close()
}
