package ipn

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/k-code-yt/cashpay-ipn/internal/domain/notification"
	"github.com/k-code-yt/cashpay-ipn/internal/logging"
	pkgerrors "github.com/k-code-yt/cashpay-ipn/pkg/errors"
)

type Observer interface {
	ObserveNotification(disposition pkgerrors.Disposition, code int, elapsed time.Duration)
}

type noopObserver struct{}

func (noopObserver) ObserveNotification(pkgerrors.Disposition, int, time.Duration) {}

type Processor struct {
	validator *Validator
	signer    *Signer
	gate      *TransactionGate
	machine   *OrderStateMachine
	store     Datastore

	log      logrus.FieldLogger
	audit    logrus.FieldLogger
	redactor *logging.Redactor
	observer Observer
}

type ProcessorOpt func(*Processor)

func WithObserver(o Observer) ProcessorOpt {
	return func(p *Processor) { p.observer = o }
}

// WithForensicLog sets the sink that receives every rejection with its
// redacted payload.
func WithForensicLog(l logrus.FieldLogger, r *logging.Redactor) ProcessorOpt {
	return func(p *Processor) {
		p.audit = l
		p.redactor = r
	}
}

func WithLogger(l logrus.FieldLogger) ProcessorOpt {
	return func(p *Processor) { p.log = l }
}

func NewProcessor(v *Validator, s *Signer, g *TransactionGate, m *OrderStateMachine, store Datastore, opts ...ProcessorOpt) *Processor {
	p := &Processor{
		validator: v,
		signer:    s,
		gate:      g,
		machine:   m,
		store:     store,
		log:       logrus.StandardLogger(),
		audit:     logrus.StandardLogger(),
		redactor:  logging.NewRedactor(0),
		observer:  noopObserver{},
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Process runs a raw callback payload through every stage. A nil error means
// the transition was persisted; any error is an *AppError and nothing was
// written.
func (p *Processor) Process(ctx context.Context, payload url.Values) (err error) {
	start := time.Now()
	defer func() {
		p.observer.ObserveNotification(pkgerrors.GetDisposition(err), pkgerrors.GetErrorCode(err), time.Since(start))
	}()

	n, err := p.validator.Parse(payload)
	if err != nil {
		p.reject(payload, err)
		return err
	}

	if err = p.signer.Verify(n); err != nil {
		p.reject(payload, err)
		return err
	}

	var ev *notification.SettlementEvent
	err = p.store.InTx(ctx, func(ctx context.Context, s Store) error {
		if _, err := p.gate.Check(ctx, s, n); err != nil {
			return err
		}
		applied, err := p.machine.Apply(ctx, s, n)
		if err != nil {
			return err
		}
		ev = applied
		return nil
	})
	if err != nil {
		var appErr *pkgerrors.AppError
		if !errors.As(err, &appErr) {
			err = pkgerrors.NewPersistenceError(err)
		}
		p.reject(payload, err)
		return err
	}

	p.log.WithFields(logrus.Fields{
		"ORDER#":   ev.OrderID,
		"TX_ID":    ev.TransactionID,
		"STATE":    ev.State,
		"STATUS":   ev.OrderStatus,
		"EVENT_ID": ev.EventID,
	}).Info("IPN:TRANSITION_APPLIED")
	return nil
}

// Reject records a callback whose payload could not even be decoded. It
// goes to the same forensic sink and observer as every other rejection.
func (p *Processor) Reject(payload url.Values, cause error) error {
	err := pkgerrors.NewMalformedPayloadError(cause)
	p.reject(payload, err)
	p.observer.ObserveNotification(pkgerrors.GetDisposition(err), err.Code, 0)
	return err
}

func (p *Processor) reject(payload url.Values, err error) {
	fields := logrus.Fields{
		"CODE":        pkgerrors.GetErrorCode(err),
		"DISPOSITION": pkgerrors.GetDisposition(err).String(),
		"PAYLOAD":     p.redactor.Redact(payload),
	}
	entry := p.audit.WithFields(fields).WithError(err)
	switch pkgerrors.GetErrorCode(err) {
	case pkgerrors.CodeUnhandledState:
		entry.Warn("model/ipn: not able to handle state")
	case pkgerrors.CodePersistenceFailure, pkgerrors.CodeUnknown:
		entry.Error("model/ipn: persistence failure")
		p.log.WithFields(logrus.Fields{"CODE": fields["CODE"]}).WithError(err).Error("IPN:PERSISTENCE_FAILURE")
	default:
		entry.Warn("model/ipn: notification rejected")
	}
}
