// Package repository provides domain repositories backed by storage
// executors.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/yndnr/cfkv/internal/core/domain"
	"github.com/yndnr/cfkv/internal/storage/rocks"
)

// Executor runs storage instructions. *rocks.Executor implements it.
type Executor interface {
	Exec(ctx context.Context, ins rocks.Instruction) (rocks.Outcome, error)
}

// Event name suffixes emitted by KV.
const (
	EventSaved   = "saved"
	EventRemoved = "removed"
)

// KV is a domain.Repository storing JSON-encoded entities in one column
// family, keyed by UID.
type KV[E domain.Entity] struct {
	exec      Executor
	publisher *domain.Publisher
	topic     string
}

// Option configures a KV repository.
type Option func(*options)

type options struct {
	publisher *domain.Publisher
	topic     string
}

// WithEvents emits topic+".saved" and topic+".removed" on p after each
// successful write. The payload is the entity for saves and the uid for
// removals.
func WithEvents(p *domain.Publisher, topic string) Option {
	return func(o *options) {
		o.publisher = p
		o.topic = topic
	}
}

// NewKV creates a repository over exec.
func NewKV[E domain.Entity](exec Executor, opts ...Option) *KV[E] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return &KV[E]{exec: exec, publisher: o.publisher, topic: o.topic}
}

// FindByUID loads the entity stored under uid.
func (r *KV[E]) FindByUID(ctx context.Context, uid string) (E, error) {
	var zero E

	out, err := r.exec.Exec(ctx, rocks.GetCf{Key: uid})
	if err != nil {
		return zero, repositoryError(err)
	}

	got, ok := out.(rocks.SingleByte)
	if !ok {
		return zero, unexpectedOutcome(out)
	}
	if !got.Found {
		return zero, domain.ErrEntityNotFound
	}
	return decode[E](got.Value)
}

// FindMany loads the entities stored under uids in one batched lookup.
// Absent ids are skipped. Entities that fail to load are reported in the
// joined error while the rest are still returned, in input order.
func (r *KV[E]) FindMany(ctx context.Context, uids []string) ([]E, error) {
	out, err := r.exec.Exec(ctx, rocks.MultiGetCf{Keys: uids})
	if err != nil {
		return nil, repositoryError(err)
	}

	got, ok := out.(rocks.MultiBytes)
	if !ok {
		return nil, unexpectedOutcome(out)
	}

	entities := make([]E, 0, len(got.Values))
	var errs []error
	for i, res := range got.Values {
		switch {
		case res.Err != nil:
			errs = append(errs, fmt.Errorf("%s: %w", uids[i], repositoryError(res.Err)))
		case !res.Found:
			continue
		default:
			e, err := decode[E](res.Value)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", uids[i], err))
				continue
			}
			entities = append(entities, e)
		}
	}
	return entities, errors.Join(errs...)
}

// Save validates and stores entity, replacing any previous version.
func (r *KV[E]) Save(ctx context.Context, entity E) error {
	if err := entity.Validate(); err != nil {
		var be *domain.BaseError
		if errors.As(err, &be) {
			return err
		}
		return domain.NewError(domain.KindValidate, err.Error()).WithCause(err)
	}

	uid := entity.UID()
	if uid == "" {
		return domain.NewError(domain.KindValidate, "uid is empty")
	}

	data, err := json.Marshal(entity)
	if err != nil {
		return domain.NewError(domain.KindToJSON, err.Error()).WithCause(err)
	}

	if _, err := r.exec.Exec(ctx, rocks.SaveCf{Key: uid, Value: data}); err != nil {
		return repositoryError(err)
	}
	return r.emit(ctx, EventSaved, entity)
}

// Remove deletes the entity stored under uid. Removing an absent entity
// is not an error.
func (r *KV[E]) Remove(ctx context.Context, uid string) error {
	if _, err := r.exec.Exec(ctx, rocks.RemoveCf{Key: uid}); err != nil {
		return repositoryError(err)
	}
	return r.emit(ctx, EventRemoved, uid)
}

func (r *KV[E]) emit(ctx context.Context, suffix string, payload any) error {
	if r.publisher == nil {
		return nil
	}
	return r.publisher.Emit(ctx, domain.Event{Name: r.topic + "." + suffix, Payload: payload})
}

func decode[E domain.Entity](data []byte) (E, error) {
	var e E
	if err := json.Unmarshal(data, &e); err != nil {
		return e, domain.NewError(domain.KindToJSON, err.Error()).WithCause(err)
	}
	return e, nil
}

func repositoryError(err error) *domain.BaseError {
	return domain.NewError(domain.KindRepository, err.Error()).WithCause(err)
}

func unexpectedOutcome(out rocks.Outcome) *domain.BaseError {
	return domain.NewError(domain.KindRepository, fmt.Sprintf("unexpected outcome %T", out))
}
