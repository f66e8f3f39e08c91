package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainNegotiation "github.com/dataspace-hub/dataspace-hub/internal/domain/negotiation"
)

const negotiationColumns = "id, correlation_id, type, counter_party_id, counter_party_address, protocol, state, state_count, state_timestamp, contract_offers, contract_agreement, error_detail, created_at"

// NegotiationStore implements negotiation.Store on postgres. Offers and
// the agreement are stored as JSONB; the optimistic version check and
// leasing both live in SQL so concurrent engine instances can share one
// database.
type NegotiationStore struct {
	pool     *pgxpool.Pool
	leaseTTL time.Duration
}

func NewNegotiationStore(pool *pgxpool.Pool, leaseTTL time.Duration) *NegotiationStore {
	if leaseTTL <= 0 {
		leaseTTL = 60 * time.Second
	}
	return &NegotiationStore{pool: pool, leaseTTL: leaseTTL}
}

// querier is satisfied by both the pool and a pgx transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (s *NegotiationStore) db(ctx context.Context) querier {
	if tx, ok := txFrom(ctx); ok {
		return tx
	}
	return s.pool
}

func (s *NegotiationStore) FindByID(ctx context.Context, id string) (*domainNegotiation.ContractNegotiation, error) {
	row := s.db(ctx).QueryRow(ctx, `
		SELECT `+negotiationColumns+`
		FROM contract_negotiations WHERE id=$1
	`, id)
	return scanNegotiation(row)
}

func (s *NegotiationStore) FindForCorrelationID(ctx context.Context, correlationID string) (*domainNegotiation.ContractNegotiation, error) {
	if correlationID == "" {
		return nil, nil
	}
	row := s.db(ctx).QueryRow(ctx, `
		SELECT `+negotiationColumns+`
		FROM contract_negotiations WHERE correlation_id=$1
	`, correlationID)
	return scanNegotiation(row)
}

func (s *NegotiationStore) FindContractAgreement(ctx context.Context, agreementID string) (*domainNegotiation.ContractAgreement, error) {
	var raw []byte
	err := s.db(ctx).QueryRow(ctx, `
		SELECT contract_agreement FROM contract_negotiations
		WHERE contract_agreement->>'id'=$1
	`, agreementID).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	var a domainNegotiation.ContractAgreement
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("failed to decode contract agreement: %w", err)
	}
	return &a, nil
}

// Save inserts a new negotiation or updates an existing one. The update
// predicate carries the version the caller read; zero rows affected
// means somebody else saved in between. A successful save clears the
// lease and bumps the caller's StateCount to the stored version.
func (s *NegotiationStore) Save(ctx context.Context, n *domainNegotiation.ContractNegotiation) error {
	offers, agreement, err := encodeDocuments(n)
	if err != nil {
		return err
	}

	if n.StateCount == 0 {
		_, err := s.db(ctx).Exec(ctx, `
			INSERT INTO contract_negotiations
			(`+negotiationColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,1,$8,$9,$10,$11,$12)
		`, n.ID, n.CorrelationID, n.Type, n.CounterPartyID, n.CounterPartyAddress, n.Protocol, n.State, n.StateTimestamp, offers, agreement, n.ErrorDetail, n.CreatedAt)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return domainNegotiation.ErrDuplicateID
			}
			return err
		}
		n.StateCount = 1
		return nil
	}

	tag, err := s.db(ctx).Exec(ctx, `
		UPDATE contract_negotiations
		SET correlation_id=$1, state=$2, state_count=state_count+1, state_timestamp=$3,
		    contract_offers=$4, contract_agreement=$5, error_detail=$6, lease_until=NULL
		WHERE id=$7 AND state_count=$8
	`, n.CorrelationID, n.State, n.StateTimestamp, offers, agreement, n.ErrorDetail, n.ID, n.StateCount)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainNegotiation.ErrStaleVersion
	}
	n.StateCount++
	return nil
}

// LeaseNextByState claims up to limit negotiations in the given state,
// oldest state change first. SKIP LOCKED keeps concurrent instances off
// each other's rows; the lease column keeps them off between passes.
func (s *NegotiationStore) LeaseNextByState(ctx context.Context, state domainNegotiation.State, limit int) ([]*domainNegotiation.ContractNegotiation, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.db(ctx).Query(ctx, `
		UPDATE contract_negotiations
		SET lease_until=$1
		WHERE id IN (
			SELECT id FROM contract_negotiations
			WHERE state=$2 AND (lease_until IS NULL OR lease_until < now())
			ORDER BY state_timestamp ASC
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		RETURNING `+negotiationColumns+`
	`, time.Now().UTC().Add(s.leaseTTL), state, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domainNegotiation.ContractNegotiation
	for rows.Next() {
		n, err := scanNegotiation(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

// QueryNegotiations translates validated filter paths into SQL over the
// columns and JSONB documents.
func (s *NegotiationStore) QueryNegotiations(ctx context.Context, spec domainNegotiation.QuerySpec) ([]*domainNegotiation.ContractNegotiation, error) {
	query := "SELECT " + negotiationColumns + " FROM contract_negotiations"
	args := []any{}
	idx := 1

	for _, c := range spec.Filter {
		expr, err := filterSQL(c.OperandLeft, c.Operator, idx)
		if err != nil {
			return nil, err
		}
		query += addWhere(query) + " " + expr
		args = append(args, c.OperandRight)
		idx++
	}

	orderBy := "created_at"
	if spec.SortField != "" {
		expr, err := sortSQL(spec.SortField)
		if err != nil {
			return nil, err
		}
		orderBy = expr
	}
	query += " ORDER BY " + orderBy
	if spec.SortOrder == domainNegotiation.SortDesc {
		query += " DESC"
	} else {
		query += " ASC"
	}
	if spec.Limit > 0 {
		query += " LIMIT $" + itoa(idx)
		args = append(args, spec.Limit)
		idx++
	}
	if spec.Offset > 0 {
		query += " OFFSET $" + itoa(idx)
		args = append(args, spec.Offset)
	}

	rows, err := s.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domainNegotiation.ContractNegotiation
	for rows.Next() {
		n, err := scanNegotiation(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

var negotiationColumnsByPath = map[string]string{
	"id":                  "id",
	"correlationId":       "correlation_id",
	"type":                "type",
	"counterPartyId":      "counter_party_id",
	"counterPartyAddress": "counter_party_address",
	"protocol":            "protocol",
	"state":               "state",
	"stateCount":          "state_count",
	"stateTimestamp":      "state_timestamp",
	"errorDetail":         "error_detail",
	"createdAt":           "created_at",
}

var sqlOperators = map[string]string{
	"=": "=", "!=": "<>", "<>": "<>",
	"<": "<", "<=": "<=", ">": ">", ">=": ">=",
	"like": "LIKE", "LIKE": "LIKE",
}

// filterSQL renders one criterion. Numeric columns compare against a
// cast parameter; JSONB paths compare as text. Offer paths match when
// any offer in the list satisfies the comparison.
func filterSQL(path, operator string, argIdx int) (string, error) {
	op, ok := sqlOperators[operator]
	if !ok {
		return "", domainNegotiation.BadRequest("unsupported filter operator %q", operator)
	}
	arg := "$" + itoa(argIdx)

	if col, ok := negotiationColumnsByPath[path]; ok {
		if col == "state" || col == "state_count" {
			return col + " " + op + " " + arg + "::integer", nil
		}
		return col + " " + op + " " + arg, nil
	}

	segments := strings.Split(path, ".")
	switch segments[0] {
	case "contractAgreement":
		return jsonbText("contract_agreement", segments[1:]) + " " + op + " " + arg, nil
	case "contractOffers":
		return "EXISTS (SELECT 1 FROM jsonb_array_elements(contract_offers) AS o(offer) WHERE " +
			jsonbText("offer", segments[1:]) + " " + op + " " + arg + ")", nil
	}
	return "", domainNegotiation.BadRequest("filter path %q does not resolve", path)
}

func sortSQL(path string) (string, error) {
	if col, ok := negotiationColumnsByPath[path]; ok {
		return col, nil
	}
	segments := strings.Split(path, ".")
	if segments[0] == "contractAgreement" {
		return jsonbText("contract_agreement", segments[1:]), nil
	}
	return "", domainNegotiation.BadRequest("cannot sort by %q", path)
}

func jsonbText(root string, segments []string) string {
	expr := root
	for i, seg := range segments {
		if i == len(segments)-1 {
			expr += "->>'" + seg + "'"
		} else {
			expr += "->'" + seg + "'"
		}
	}
	return expr
}

func encodeDocuments(n *domainNegotiation.ContractNegotiation) ([]byte, []byte, error) {
	var offers, agreement []byte
	var err error
	if len(n.ContractOffers) > 0 {
		if offers, err = json.Marshal(n.ContractOffers); err != nil {
			return nil, nil, fmt.Errorf("failed to encode contract offers: %w", err)
		}
	}
	if n.ContractAgreement != nil {
		if agreement, err = json.Marshal(n.ContractAgreement); err != nil {
			return nil, nil, fmt.Errorf("failed to encode contract agreement: %w", err)
		}
	}
	return offers, agreement, nil
}

func scanNegotiation(row pgx.Row) (*domainNegotiation.ContractNegotiation, error) {
	var n domainNegotiation.ContractNegotiation
	var offers, agreement []byte
	err := row.Scan(&n.ID, &n.CorrelationID, &n.Type, &n.CounterPartyID, &n.CounterPartyAddress, &n.Protocol, &n.State, &n.StateCount, &n.StateTimestamp, &offers, &agreement, &n.ErrorDetail, &n.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if len(offers) > 0 {
		if err := json.Unmarshal(offers, &n.ContractOffers); err != nil {
			return nil, fmt.Errorf("failed to decode contract offers: %w", err)
		}
	}
	if len(agreement) > 0 {
		n.ContractAgreement = &domainNegotiation.ContractAgreement{}
		if err := json.Unmarshal(agreement, n.ContractAgreement); err != nil {
			return nil, fmt.Errorf("failed to decode contract agreement: %w", err)
		}
	}
	return &n, nil
}

func addWhere(query string) string {
	if strings.Contains(query, " WHERE ") {
		return " AND"
	}
	return " WHERE"
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
