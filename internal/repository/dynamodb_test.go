package repository

import (
	"errors"
	"sort"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/cloud-wave-best-zizon/storefront-service/internal/domain"
)

func canceled(codes ...string) error {
	reasons := make([]types.CancellationReason, len(codes))
	for i, code := range codes {
		reasons[i] = types.CancellationReason{Code: aws.String(code)}
	}
	return &types.TransactionCanceledException{CancellationReasons: reasons}
}

func TestTransactionError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{"cart version lost", canceled("ConditionalCheckFailed", "None"), ErrVersionConflict},
		{"stock guard failed", canceled("None", "None", "ConditionalCheckFailed"), ErrInsufficientStock},
		{"concurrent cart write", canceled("TransactionConflict", "None"), ErrVersionConflict},
		{"concurrent product write", canceled("None", "TransactionConflict"), ErrVersionConflict},
		{"stock failure wins over conflict", canceled("TransactionConflict", "ConditionalCheckFailed"), ErrInsufficientStock},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := transactionError(tc.err); !errors.Is(got, tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}

	other := transactionError(canceled("ThrottlingError"))
	if errors.Is(other, ErrVersionConflict) || errors.Is(other, ErrInsufficientStock) {
		t.Fatalf("throttling must not look like a condition failure: %v", other)
	}

	plain := errors.New("boom")
	if got := transactionError(plain); !errors.Is(got, plain) {
		t.Fatalf("expected wrapped error, got %v", got)
	}
}

func TestProductFilter(t *testing.T) {
	if _, ok := productFilter(domain.ProductQuery{Category: domain.AllCategories}); ok {
		t.Fatal("expected no filter for all categories")
	}

	lo, hi := 10.0, 20.0
	cond, ok := productFilter(domain.ProductQuery{
		Category: "Books",
		MinPrice: &lo,
		MaxPrice: &hi,
		Search:   "  Go ",
	})
	if !ok {
		t.Fatal("expected a filter")
	}

	expr, err := expression.NewBuilder().WithFilter(cond).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	var names []string
	for _, n := range expr.Names() {
		names = append(names, n)
	}
	sort.Strings(names)
	want := []string{"category", "description_lower", "name_lower", "price"}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("names = %v, want %v", names, want)
		}
	}

	var term string
	for _, v := range expr.Values() {
		if s, ok := v.(*types.AttributeValueMemberS); ok && s.Value != "Books" {
			term = s.Value
		}
	}
	if term != "go" {
		t.Fatalf("search term = %q, want lower-cased and trimmed", term)
	}
}

func TestVersionCondition(t *testing.T) {
	for _, version := range []int64{0, 4} {
		expr, err := expression.NewBuilder().WithCondition(versionCondition(version)).Build()
		if err != nil {
			t.Fatalf("version %d: %v", version, err)
		}
		if *expr.Condition() == "" {
			t.Fatalf("version %d: empty condition", version)
		}
	}
}
