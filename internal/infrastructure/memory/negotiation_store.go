// Package memory provides the in-memory negotiation store used for
// tests and single-node deployments without a database.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Knetic/govaluate"

	domainNegotiation "github.com/dataspace-hub/dataspace-hub/internal/domain/negotiation"
)

const defaultLeaseTTL = 60 * time.Second

type lease struct {
	until time.Time
}

// NegotiationStore implements negotiation.Store on a map. Save performs
// the compare-and-swap on StateCount; LeaseNextByState hands each
// negotiation to at most one caller until the lease expires or the
// record is saved.
type NegotiationStore struct {
	mu           sync.Mutex
	negotiations map[string]*domainNegotiation.ContractNegotiation
	leases       map[string]lease
	leaseTTL     time.Duration

	now func() time.Time
}

func NewNegotiationStore(leaseTTL time.Duration) *NegotiationStore {
	if leaseTTL <= 0 {
		leaseTTL = defaultLeaseTTL
	}
	return &NegotiationStore{
		negotiations: map[string]*domainNegotiation.ContractNegotiation{},
		leases:       map[string]lease{},
		leaseTTL:     leaseTTL,
		now:          time.Now,
	}
}

func (s *NegotiationStore) FindByID(ctx context.Context, id string) (*domainNegotiation.ContractNegotiation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.negotiations[id]
	if !ok {
		return nil, nil
	}
	return n.Copy(), nil
}

func (s *NegotiationStore) FindForCorrelationID(ctx context.Context, correlationID string) (*domainNegotiation.ContractNegotiation, error) {
	if correlationID == "" {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.negotiations {
		if n.CorrelationID == correlationID {
			return n.Copy(), nil
		}
	}
	return nil, nil
}

func (s *NegotiationStore) FindContractAgreement(ctx context.Context, agreementID string) (*domainNegotiation.ContractAgreement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.negotiations {
		if n.ContractAgreement != nil && n.ContractAgreement.ID == agreementID {
			copied := *n.ContractAgreement
			return &copied, nil
		}
	}
	return nil, nil
}

// Save persists the negotiation and releases any lease on it. The
// incoming StateCount must match the stored one; on success the count is
// bumped so both the store and the caller's record observe the new
// version.
func (s *NegotiationStore) Save(ctx context.Context, n *domainNegotiation.ContractNegotiation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.negotiations[n.ID]
	if ok {
		if n.StateCount == 0 {
			return domainNegotiation.ErrDuplicateID
		}
		if existing.StateCount != n.StateCount {
			return domainNegotiation.ErrStaleVersion
		}
	} else if n.StateCount != 0 {
		return domainNegotiation.ErrStaleVersion
	}

	n.StateCount++
	s.negotiations[n.ID] = n.Copy()
	delete(s.leases, n.ID)
	return nil
}

// LeaseNextByState returns up to limit negotiations in the given state,
// oldest state change first, skipping records already leased. Returned
// records are leased for the store's TTL.
func (s *NegotiationStore) LeaseNextByState(ctx context.Context, state domainNegotiation.State, limit int) ([]*domainNegotiation.ContractNegotiation, error) {
	if limit <= 0 {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var candidates []*domainNegotiation.ContractNegotiation
	for id, n := range s.negotiations {
		if n.State != state {
			continue
		}
		if l, leased := s.leases[id]; leased && now.Before(l.until) {
			continue
		}
		candidates = append(candidates, n)
	}
	sort.Slice(candidates, func(i, j int) bool {
		if !candidates[i].StateTimestamp.Equal(candidates[j].StateTimestamp) {
			return candidates[i].StateTimestamp.Before(candidates[j].StateTimestamp)
		}
		return candidates[i].ID < candidates[j].ID
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	result := make([]*domainNegotiation.ContractNegotiation, 0, len(candidates))
	for _, n := range candidates {
		s.leases[n.ID] = lease{until: now.Add(s.leaseTTL)}
		result = append(result, n.Copy())
	}
	return result, nil
}

// QueryNegotiations filters, sorts and pages the stored negotiations.
// Criteria are evaluated as boolean expressions over the flattened JSON
// form of each record.
func (s *NegotiationStore) QueryNegotiations(ctx context.Context, spec domainNegotiation.QuerySpec) ([]*domainNegotiation.ContractNegotiation, error) {
	s.mu.Lock()
	all := make([]*domainNegotiation.ContractNegotiation, 0, len(s.negotiations))
	for _, n := range s.negotiations {
		all = append(all, n.Copy())
	}
	s.mu.Unlock()

	var result []*domainNegotiation.ContractNegotiation
	for _, n := range all {
		params, err := flattenNegotiation(n)
		if err != nil {
			return nil, err
		}
		match, err := matchesAll(spec.Filter, params)
		if err != nil {
			return nil, err
		}
		if match {
			result = append(result, n)
		}
	}

	if spec.SortField != "" {
		sortNegotiations(result, spec.SortField, spec.SortOrder)
	} else {
		sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	}

	if spec.Offset > 0 {
		if spec.Offset >= len(result) {
			return nil, nil
		}
		result = result[spec.Offset:]
	}
	if spec.Limit > 0 && spec.Limit < len(result) {
		result = result[:spec.Limit]
	}
	return result, nil
}

func matchesAll(filter []domainNegotiation.Criterion, params map[string]interface{}) (bool, error) {
	for _, c := range filter {
		value, present := params[c.OperandLeft]
		if !present {
			return false, nil
		}
		expr, err := govaluate.NewEvaluableExpression(criterionExpression(c))
		if err != nil {
			return false, fmt.Errorf("failed to compile filter %q: %w", c.OperandLeft, err)
		}
		if !matchesAny(expr, c.OperandLeft, value) {
			return false, nil
		}
	}
	return true, nil
}

// matchesAny evaluates the criterion against the value under the path.
// When the path collected one value per array element, any matching
// element satisfies the criterion.
func matchesAny(expr *govaluate.EvaluableExpression, path string, value interface{}) bool {
	candidates := []interface{}{value}
	if list, ok := value.([]interface{}); ok {
		candidates = list
	}
	for _, v := range candidates {
		out, err := expr.Evaluate(map[string]interface{}{path: v})
		if err != nil {
			continue
		}
		if b, ok := out.(bool); ok && b {
			return true
		}
	}
	return false
}

// criterionExpression renders a criterion as a govaluate expression. The
// dotted field path becomes an escaped parameter; the right operand is a
// numeric literal when it parses as one, a quoted string otherwise.
func criterionExpression(c domainNegotiation.Criterion) string {
	op := c.Operator
	if op == "=" {
		op = "=="
	}
	right := c.OperandRight
	if _, err := strconv.ParseFloat(right, 64); err != nil {
		right = "'" + strings.ReplaceAll(right, "'", "\\'") + "'"
	}
	return "[" + c.OperandLeft + "] " + op + " " + right
}

func flattenNegotiation(n *domainNegotiation.ContractNegotiation) (map[string]interface{}, error) {
	encoded, err := json.Marshal(n)
	if err != nil {
		return nil, err
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(encoded, &raw); err != nil {
		return nil, err
	}
	params := map[string]interface{}{}
	flatten("", raw, params)
	return params, nil
}

// flatten expands nested objects into dotted keys. Array elements
// collect their values into a slice under the unindexed path, so a
// filter on contractOffers.id can match any offer in the list.
func flatten(prefix string, m map[string]interface{}, out map[string]interface{}) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch vv := v.(type) {
		case map[string]interface{}:
			flatten(key, vv, out)
		case []interface{}:
			for _, elem := range vv {
				if em, ok := elem.(map[string]interface{}); ok {
					flatten(key, em, out)
				} else {
					collect(out, key, elem)
				}
			}
		default:
			collect(out, key, vv)
		}
	}
}

// collect stores a value under a dotted key, widening to a slice when
// several array elements contribute to the same key.
func collect(out map[string]interface{}, key string, v interface{}) {
	existing, ok := out[key]
	if !ok {
		out[key] = v
		return
	}
	if list, ok := existing.([]interface{}); ok {
		out[key] = append(list, v)
		return
	}
	out[key] = []interface{}{existing, v}
}

func sortNegotiations(list []*domainNegotiation.ContractNegotiation, field string, order domainNegotiation.SortOrder) {
	keys := make(map[string]interface{}, len(list))
	values := func(n *domainNegotiation.ContractNegotiation) interface{} {
		if v, ok := keys[n.ID]; ok {
			return v
		}
		params, err := flattenNegotiation(n)
		if err != nil {
			keys[n.ID] = nil
			return nil
		}
		keys[n.ID] = params[field]
		return params[field]
	}
	sort.SliceStable(list, func(i, j int) bool {
		vi, vj := values(list[i]), values(list[j])
		if order == domainNegotiation.SortDesc {
			return lessValue(vj, vi)
		}
		return lessValue(vi, vj)
	})
}

func lessValue(a, b interface{}) bool {
	af, aok := a.(float64)
	bf, bok := b.(float64)
	if aok && bok {
		return af < bf
	}
	return fmt.Sprint(a) < fmt.Sprint(b)
}
