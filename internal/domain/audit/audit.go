package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	ActionCreate      = "create"
	ActionUpdate      = "update"
	ActionDelete      = "delete"
	ActionCheckIn     = "check_in"
	ActionCheckOut    = "check_out"
	ActionApprove     = "approve"
	ActionReject      = "reject"
	ActionGenerate    = "generate"
	ActionLogin       = "login"
	ActionPassword    = "change_password"
	ActionSubmit      = "submit"
	ActionAcknowledge = "acknowledge"
	ActionComplete    = "complete"
)

// Event is one row of the trail. Before and After hold the JSON state of the
// entity around the change and are only loaded on request.
type Event struct {
	ID         string          `json:"id"`
	ActorID    string          `json:"actorId"`
	Action     string          `json:"action"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	RequestID  string          `json:"requestId"`
	IP         string          `json:"ip"`
	CreatedAt  time.Time       `json:"createdAt"`
	Before     json.RawMessage `json:"before,omitempty"`
	After      json.RawMessage `json:"after,omitempty"`
}

// Filter narrows the trail. From and To are inclusive calendar days.
type Filter struct {
	Action     string
	EntityType string
	EntityID   string
	ActorUser  string
	From       time.Time
	To         time.Time
}

// Counter receives one tick per recorded event, keyed entity.action.
type Counter interface {
	Inc(name string)
}

type Service struct {
	DB      *pgxpool.Pool
	Metrics Counter
}

func New(db *pgxpool.Pool) *Service {
	return &Service{DB: db}
}

// Record writes one audit row. A Service without a pool only counts, which
// keeps handler tests free of a database.
func (s *Service) Record(ctx context.Context, actorID, action, entityType, entityID, requestID, ip string, before, after any) error {
	if s == nil {
		return nil
	}
	if s.Metrics != nil {
		s.Metrics.Inc(entityType + "." + action)
	}
	if s.DB == nil {
		return nil
	}
	beforeJSON, err := marshalState(before)
	if err != nil {
		return fmt.Errorf("audit %s.%s before state: %w", entityType, action, err)
	}
	afterJSON, err := marshalState(after)
	if err != nil {
		return fmt.Errorf("audit %s.%s after state: %w", entityType, action, err)
	}

	_, err = s.DB.Exec(ctx, `
    INSERT INTO audit_events (actor_user_id, action, entity_type, entity_id, before_json, after_json, request_id, ip)
    VALUES (NULLIF($1,'')::uuid,$2,$3,$4,$5,$6,$7,$8)
  `, actorID, action, entityType, entityID, beforeJSON, afterJSON, requestID, ip)
	return err
}

func marshalState(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func (s *Service) Count(ctx context.Context, filter Filter) (int, error) {
	where, args := filterWhere(filter)
	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM audit_events"+where, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count audit events: %w", err)
	}
	return total, nil
}

func (s *Service) List(ctx context.Context, filter Filter, includeDetails bool, limit, offset int) ([]Event, error) {
	cols := "id, COALESCE(actor_user_id::text, ''), action, entity_type, entity_id, request_id, ip, created_at"
	if includeDetails {
		cols += ", before_json, after_json"
	}
	where, args := filterWhere(filter)
	query := "SELECT " + cols + " FROM audit_events" + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)

	rows, err := s.DB.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	out := []Event{}
	for rows.Next() {
		var evt Event
		dest := []any{&evt.ID, &evt.ActorID, &evt.Action, &evt.EntityType, &evt.EntityID, &evt.RequestID, &evt.IP, &evt.CreatedAt}
		if includeDetails {
			dest = append(dest, &evt.Before, &evt.After)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		out = append(out, evt)
	}
	return out, rows.Err()
}

func filterWhere(filter Filter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, value any) {
		args = append(args, value)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if v := strings.TrimSpace(filter.Action); v != "" {
		add("action = $%d", v)
	}
	if v := strings.TrimSpace(filter.EntityType); v != "" {
		add("entity_type = $%d", v)
	}
	if v := strings.TrimSpace(filter.EntityID); v != "" {
		add("entity_id = $%d", v)
	}
	if v := strings.TrimSpace(filter.ActorUser); v != "" {
		add("actor_user_id::text = $%d", v)
	}
	if !filter.From.IsZero() {
		add("created_at >= $%d", filter.From)
	}
	if !filter.To.IsZero() {
		add("created_at < $%d", filter.To.AddDate(0, 0, 1))
	}
	if len(conds) == 0 {
		return " WHERE 1=1", nil
	}
	return " WHERE 1=1 AND " + strings.Join(conds, " AND "), args
}
