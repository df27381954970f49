package registry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/velmala/funding-advisor/internal/funding"
)

const lookupJSON = `{
  "totalResults": 1,
  "companies": [
    {
      "names": [
        {"name": "Old Name Oy", "version": 2},
        {"name": "Acme Software Oy", "version": 1}
      ],
      "mainBusinessLine": {
        "type": "62010",
        "descriptions": [{"description": "Computer programming activities"}]
      },
      "addresses": [{"country": "FI"}]
    }
  ]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, func()) {
	t.Helper()
	server := httptest.NewServer(handler)
	client := New(context.Background(), zap.NewNop())
	client.APIURL = server.URL
	return client, server.Close
}

func TestLookup(t *testing.T) {
	client, done := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("businessId"); got != "1234567-8" {
			t.Fatalf("unexpected businessId param: %q", got)
		}
		w.Write([]byte(lookupJSON))
	})
	defer done()

	company, err := client.Lookup("1234567-8")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if company == nil {
		t.Fatal("expected a company")
	}

	if company.Name != "Acme Software Oy" {
		t.Fatalf("expected the version 1 name, got %q", company.Name)
	}
	if company.Industry != "Computer programming activities" {
		t.Fatalf("unexpected industry: %q", company.Industry)
	}
	if company.Country != "Finland" {
		t.Fatalf("expected FI to map to Finland, got %q", company.Country)
	}
}

func TestLookupNoMatchIsNotAnError(t *testing.T) {
	client, done := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"totalResults": 0, "companies": []}`))
	})
	defer done()

	company, err := client.Lookup("1234567-8")
	if err != nil {
		t.Fatalf("no match must not be an error, got %v", err)
	}
	if company != nil {
		t.Fatalf("expected nil company, got %+v", company)
	}
}

func TestLookupMalformedID(t *testing.T) {
	client := New(context.Background(), zap.NewNop())

	for _, id := range []string{"", "abc", "123-4", "12345678", "1234567-89"} {
		_, err := client.Lookup(id)
		if !errors.Is(err, ErrMalformedID) {
			t.Fatalf("id %q: expected ErrMalformedID, got %v", id, err)
		}
	}
}

func TestLookupRateLimited(t *testing.T) {
	client, done := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	defer done()

	_, err := client.Lookup("1234567-8")
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestLookupUpstreamFailure(t *testing.T) {
	client, done := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	defer done()

	_, err := client.Lookup("1234567-8")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}

	// Connection failures surface the same way as bad statuses.
	closed, done2 := newTestClient(t, func(http.ResponseWriter, *http.Request) {})
	done2()
	_, err = closed.Lookup("1234567-8")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable for network error, got %v", err)
	}
}

func TestBuildProfile(t *testing.T) {
	client, done := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(lookupJSON))
	})
	defer done()

	minAmount := 50000
	profile, err := client.BuildProfile("1234567-8", ProfileParams{
		Stage:            funding.StageSeed,
		RevenueClass:     "<250k",
		Employees:        5,
		FundingNeedTypes: []string{"RDI"},
		FundingAmountMin: &minAmount,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile == nil {
		t.Fatal("expected a profile")
	}

	if profile.Name != "Acme Software Oy" {
		t.Fatalf("unexpected name: %q", profile.Name)
	}
	if profile.BusinessID != "1234567-8" {
		t.Fatalf("unexpected business id: %q", profile.BusinessID)
	}
	if profile.Stage != funding.StageSeed {
		t.Fatalf("unexpected stage: %q", profile.Stage)
	}
	if profile.Country != "Finland" {
		t.Fatalf("unexpected country: %q", profile.Country)
	}
	if profile.FundingAmountMin == nil || *profile.FundingAmountMin != 50000 {
		t.Fatalf("unexpected min amount: %v", profile.FundingAmountMin)
	}
}

func TestBuildProfileCountryOverride(t *testing.T) {
	tests := []struct {
		name    string
		country string
		want    string
	}{
		{"unset keeps registry country", "", "Finland"},
		{"finland keeps registry country", "Finland", "Finland"},
		{"other country overrides", "Germany", "Germany"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client, done := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.Write([]byte(lookupJSON))
			})
			defer done()

			profile, err := client.BuildProfile("1234567-8", ProfileParams{
				Stage:            funding.StageSeed,
				FundingNeedTypes: []string{"RDI"},
				Country:          tc.country,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if profile.Country != tc.want {
				t.Fatalf("country = %q, want %q", profile.Country, tc.want)
			}
		})
	}
}

func TestBuildCompanyFallbacks(t *testing.T) {
	company := buildCompany("1234567-8", rawCompany{})
	if company.Name != "1234567-8" {
		t.Fatalf("expected business id fallback name, got %q", company.Name)
	}
	if company.Industry != "Unknown" {
		t.Fatalf("expected Unknown industry, got %q", company.Industry)
	}
	if company.Country != "Finland" {
		t.Fatalf("expected Finland default, got %q", company.Country)
	}
}
