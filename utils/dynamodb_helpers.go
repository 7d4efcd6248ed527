package utils

import (
	"strconv"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// NumberValue wraps an int64 as a DynamoDB number
func NumberValue(n int64) *types.AttributeValueMemberN {
	return &types.AttributeValueMemberN{Value: strconv.FormatInt(n, 10)}
}

// StringSet wraps ids as a DynamoDB string set
func StringSet(ids ...string) *types.AttributeValueMemberSS {
	return &types.AttributeValueMemberSS{Value: ids}
}

// StripNullAttributes drops NULL attributes. Empty sets marshal to NULL and
// DynamoDB cannot ADD into a NULL attribute later.
func StripNullAttributes(item map[string]types.AttributeValue, names ...string) {
	for _, name := range names {
		if _, isNull := item[name].(*types.AttributeValueMemberNULL); isNull {
			delete(item, name)
		}
	}
}
