package middleware

import (
	"context"

	"github.com/aretw0/rapidhire/pkg/domain"
	"github.com/aretw0/rapidhire/pkg/ports"
)

// Mask replaces a redacted value.
const Mask = "***"

// Application fields that can be redacted, by their JSON name.
const (
	FieldName           = "name"
	FieldGraduationYear = "graduation_year"
	FieldTargetLanguage = "target_language"
	FieldPhone          = "phone"
)

// PIIFields are the fields that identify a candidate.
var PIIFields = []string{FieldName, FieldPhone}

type redactMiddleware struct {
	next   ports.StateStore
	fields map[string]bool
}

// NewRedactionMiddleware masks the named application fields on every Load.
// Writes pass through untouched, so the wrapped store is meant for read-only
// views such as session inspection.
func NewRedactionMiddleware(fields ...string) Middleware {
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		set[f] = true
	}
	return func(next ports.StateStore) ports.StateStore {
		return &redactMiddleware{next: next, fields: set}
	}
}

func (m *redactMiddleware) Save(ctx context.Context, sessionID string, state *domain.State) error {
	return m.next.Save(ctx, sessionID, state)
}

func (m *redactMiddleware) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	state, err := m.next.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	// Never mask a state the backend may still be holding.
	masked := state.Clone()
	app := &masked.Application
	maskField(m.fields[FieldName], &app.Name)
	maskField(m.fields[FieldGraduationYear], &app.GraduationYear)
	maskField(m.fields[FieldPhone], &app.Phone)
	if m.fields[FieldTargetLanguage] && app.TargetLanguage != "" {
		app.TargetLanguage = Mask
	}
	return masked, nil
}

func (m *redactMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *redactMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func maskField(on bool, v *string) {
	if on && *v != "" {
		*v = Mask
	}
}
