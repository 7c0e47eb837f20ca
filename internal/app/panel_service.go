package app

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"

	"go.uber.org/zap"

	"scholarforge/internal/model"
)

var (
	ErrUnknownPanel    = errors.New("unknown panel")
	ErrInvalidPayload  = errors.New("panel payload must be a json object")
	ErrPayloadTooLarge = errors.New("panel payload too large")
)

const maxPanelPayload = 1 << 20

const (
	PanelResearch   = "research"
	PanelWriter     = "writer"
	PanelReports    = "reports"
	PanelCareer     = "career"
	PanelData       = "data"
	PanelFieldTrip  = "fieldtrip"
	PanelAssignment = "assignment"
	PanelFiles      = "files"
	PanelSettings   = "settings"
)

// panelDefaults holds the keys every loaded payload is guaranteed to carry.
var panelDefaults = map[string]map[string]json.RawMessage{
	PanelResearch: {
		"topic":  json.RawMessage(`""`),
		"theses": json.RawMessage(`[]`),
	},
	PanelWriter: {
		"title":    json.RawMessage(`""`),
		"sections": json.RawMessage(`[{"id":"intro","title":"Introduction","type":"introduction","content":""},{"id":"body","title":"Body","type":"argument","content":""},{"id":"conclusion","title":"Conclusion","type":"conclusion","content":""}]`),
	},
	PanelReports:    {"kind": json.RawMessage(`"lab"`)},
	PanelCareer:     {"tab": json.RawMessage(`"cv"`)},
	PanelData:       {"csv": json.RawMessage(`""`)},
	PanelFieldTrip:  {"trip": json.RawMessage(`""`), "collapsed": json.RawMessage(`false`)},
	PanelAssignment: {"subject": json.RawMessage(`""`)},
	PanelFiles:      {"target_kb": json.RawMessage(`200`)},
	PanelSettings:   {"notifications": json.RawMessage(`true`)},
}

var panelName = regexp.MustCompile(`^[a-z][a-z0-9_-]{1,31}$`)

type PanelService struct {
	store  PanelStore
	cache  PanelCache
	logger *zap.Logger
}

func NewPanelService(store PanelStore, cache PanelCache, logger *zap.Logger) *PanelService {
	return &PanelService{store: store, cache: cache, logger: logger}
}

// Load returns the saved state, falling back to the panel defaults when
// nothing is stored or the stored payload is unreadable.
func (s *PanelService) Load(ctx context.Context, userID uint, panel string) (json.RawMessage, error) {
	if err := validatePanel(userID, panel); err != nil {
		return nil, err
	}

	if s.cache != nil {
		raw, ok, err := s.cache.Get(ctx, userID, panel)
		if err != nil {
			s.logger.Warn("panel cache get failed", zap.Error(err))
		} else if ok {
			if out, ok := withDefaults(panel, raw); ok {
				return out, nil
			}
			s.logger.Warn("discarding corrupt cached panel state",
				zap.Uint("user_id", userID), zap.String("panel", panel))
			_ = s.cache.Delete(ctx, userID, panel)
		}
	}

	state, err := s.store.Get(userID, panel)
	if err != nil {
		return nil, err
	}
	if state == nil {
		out, _ := withDefaults(panel, "{}")
		return out, nil
	}

	out, ok := withDefaults(panel, state.Payload)
	if !ok {
		s.logger.Warn("discarding corrupt stored panel state",
			zap.Uint("user_id", userID), zap.String("panel", panel))
		out, _ = withDefaults(panel, "{}")
		return out, nil
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, userID, panel, state.Payload); err != nil {
			s.logger.Warn("panel cache set failed", zap.Error(err))
		}
	}
	return out, nil
}

func (s *PanelService) Save(ctx context.Context, userID uint, panel string, payload json.RawMessage) error {
	if err := validatePanel(userID, panel); err != nil {
		return err
	}
	if len(payload) > maxPanelPayload {
		return ErrPayloadTooLarge
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(payload, &obj); err != nil || obj == nil {
		return ErrInvalidPayload
	}

	if err := s.store.Upsert(&model.PanelState{UserID: userID, Panel: panel, Payload: string(payload)}); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, userID, panel, string(payload)); err != nil {
			s.logger.Warn("panel cache set failed", zap.Error(err))
		}
	}
	return nil
}

func (s *PanelService) Reset(ctx context.Context, userID uint, panel string) error {
	if err := validatePanel(userID, panel); err != nil {
		return err
	}
	if err := s.store.Delete(userID, panel); err != nil {
		return err
	}
	if s.cache != nil {
		_ = s.cache.Delete(ctx, userID, panel)
	}
	return nil
}

func (s *PanelService) PurgeUser(ctx context.Context, userID uint) error {
	if err := s.store.DeleteByUserID(userID); err != nil {
		return err
	}
	if s.cache != nil {
		for panel := range panelDefaults {
			_ = s.cache.Delete(ctx, userID, panel)
		}
	}
	return nil
}

func validatePanel(userID uint, panel string) error {
	if userID == 0 {
		return ErrInvalidInput
	}
	if _, ok := panelDefaults[panel]; !ok || !panelName.MatchString(panel) {
		return ErrUnknownPanel
	}
	return nil
}

// withDefaults parses raw as a JSON object and fills in missing default keys.
func withDefaults(panel, raw string) (json.RawMessage, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &obj); err != nil || obj == nil {
		return nil, false
	}
	for k, v := range panelDefaults[panel] {
		if _, ok := obj[k]; !ok {
			obj[k] = v
		}
	}
	out, err := json.Marshal(obj)
	if err != nil {
		return nil, false
	}
	return out, true
}
