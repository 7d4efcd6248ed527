package models

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// IDSet is a set of user ids. It is stored as a DynamoDB string set so that
// union and removal can be applied server side with ADD / DELETE.
type IDSet map[string]struct{}

// NewIDSet builds a set from the given ids
func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

func (s IDSet) Add(ids ...string) {
	for _, id := range ids {
		s[id] = struct{}{}
	}
}

func (s IDSet) Remove(ids ...string) {
	for _, id := range ids {
		delete(s, id)
	}
}

func (s IDSet) Len() int { return len(s) }

// Sorted returns the members in ascending order
func (s IDSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Clone returns an independent copy; a nil set clones to an empty one
func (s IDSet) Clone() IDSet {
	out := make(IDSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// MarshalDynamoDBAttributeValue encodes the set as SS. DynamoDB rejects empty
// string sets, so an empty set becomes NULL and is stripped before writes.
func (s IDSet) MarshalDynamoDBAttributeValue() (types.AttributeValue, error) {
	if len(s) == 0 {
		return &types.AttributeValueMemberNULL{Value: true}, nil
	}
	return &types.AttributeValueMemberSS{Value: s.Sorted()}, nil
}

// UnmarshalDynamoDBAttributeValue accepts SS, L of S (older records) and NULL
func (s *IDSet) UnmarshalDynamoDBAttributeValue(av types.AttributeValue) error {
	out := IDSet{}
	switch v := av.(type) {
	case *types.AttributeValueMemberSS:
		out.Add(v.Value...)
	case *types.AttributeValueMemberL:
		for _, item := range v.Value {
			str, ok := item.(*types.AttributeValueMemberS)
			if !ok {
				return fmt.Errorf("unexpected list member %T in id set", item)
			}
			out.Add(str.Value)
		}
	case *types.AttributeValueMemberNULL:
	default:
		return fmt.Errorf("unexpected attribute %T for id set", av)
	}
	*s = out
	return nil
}

// MarshalJSON renders the set as a sorted array
func (s IDSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

func (s *IDSet) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewIDSet(ids...)
	return nil
}
