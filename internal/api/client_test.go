package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaccard/internal/common/auth"
	"vaccard/internal/common/errors"
	commonhttp "vaccard/internal/common/http"
	"vaccard/internal/common/logger"
	"vaccard/internal/models"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *auth.MemoryTokenStore, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	tokens := auth.NewMemoryTokenStore()
	transport := commonhttp.NewClient(srv.URL, 5*time.Second, tokens)
	return NewClient(transport, tokens, logger.NewTestLogger(t)), tokens, srv
}

func TestListPersonsSendsPagingParameters(t *testing.T) {
	var gotQuery map[string]string
	client, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/persons", r.URL.Path)
		gotQuery = map[string]string{
			"page": r.URL.Query().Get("page"),
			"size": r.URL.Query().Get("size"),
			"sort": r.URL.Query().Get("sort"),
		}
		json.NewEncoder(w).Encode(models.PersonPage{
			Content: []models.Person{{ID: 1, Name: "Ana Souza", CPF: "52998224725"}},
			Number:  2, Size: 10, TotalPages: 5, TotalElements: 42, NumberOfElements: 1,
		})
	}))

	page, err := client.ListPersons(context.Background(), 2, 10, "name,asc")
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"page": "2", "size": "10", "sort": "name,asc"}, gotQuery)
	assert.Equal(t, 2, page.Number)
	require.Len(t, page.Content, 1)
	assert.Equal(t, "Ana Souza", page.Content[0].Name)
}

func TestListPersonsRejectsNegativePage(t *testing.T) {
	client, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	}))

	_, err := client.ListPersons(context.Background(), -1, 10, "")
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.Code(err))
}

func TestSearchPersonByCPF(t *testing.T) {
	tests := []struct {
		name       string
		cpf        string
		status     int
		wantCode   errors.ErrorCode
		wantPerson bool
	}{
		{name: "hit", cpf: "52998224725", status: http.StatusOK, wantPerson: true},
		{name: "miss becomes person not found", cpf: "00000000000", status: http.StatusNotFound, wantCode: errors.ErrCodePersonNotFound},
		{name: "empty cpf rejected locally", cpf: "", wantCode: errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, tt.cpf, r.URL.Query().Get("cpf"))
				w.WriteHeader(tt.status)
				if tt.status == http.StatusOK {
					json.NewEncoder(w).Encode(models.Person{ID: 7, CPF: tt.cpf})
				}
			}))

			person, err := client.SearchPersonByCPF(context.Background(), tt.cpf)
			if tt.wantPerson {
				require.NoError(t, err)
				assert.Equal(t, int64(7), person.ID)
				return
			}
			assert.Equal(t, tt.wantCode, errors.Code(err))
		})
	}
}

func TestAddVaccinationPreservesRejectionMessage(t *testing.T) {
	client, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"message": "dose already registered"})
	}))

	err := client.AddVaccination(context.Background(), 1, models.RecordRequest{
		VaccineID:       3,
		Dose:            models.DoseFirst,
		ApplicationDate: "2026-08-01",
	})

	std := errors.AsStandardError(err)
	assert.Equal(t, errors.ErrCodeValidationRejected, std.Code)
	assert.Equal(t, "dose already registered", std.Message)
	assert.False(t, std.Retryable)
}

func TestAddVaccinationRejectsBadInputLocally(t *testing.T) {
	client, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	}))

	err := client.AddVaccination(context.Background(), 1, models.RecordRequest{
		VaccineID: 3, Dose: "FOURTH_DOSE", ApplicationDate: "2026-08-01",
	})
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.Code(err))

	err = client.AddVaccination(context.Background(), 1, models.RecordRequest{
		VaccineID: 3, Dose: models.DoseFirst,
	})
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.Code(err))
}

func TestDeleteRecordMapsMissingRecord(t *testing.T) {
	client, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/persons/4/card/records/99", r.URL.Path)
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNotFound)
	}))

	err := client.DeleteRecord(context.Background(), 4, 99)
	assert.Equal(t, errors.ErrCodeRecordNotFound, errors.Code(err))
}

func TestGetCardCategoryFilter(t *testing.T) {
	var gotCategory string
	client, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCategory = r.URL.Query().Get("category")
		json.NewEncoder(w).Encode(models.CardGrid{Person: models.Person{ID: 4}})
	}))

	_, err := client.GetCard(context.Background(), 4, nil)
	require.NoError(t, err)
	assert.Empty(t, gotCategory)

	cat := models.CategorySeasonal
	_, err = client.GetCard(context.Background(), 4, &cat)
	require.NoError(t, err)
	assert.Equal(t, "SEASONAL", gotCategory)
}

func TestLoginStoresToken(t *testing.T) {
	client, tokens, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/login", r.URL.Path)
		var req credentialsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "clerk", req.Username)
		json.NewEncoder(w).Encode(tokenResponse{Token: "tkn-123"})
	}))

	require.NoError(t, client.Login(context.Background(), "clerk", "s3cret"))

	got, ok := tokens.Token()
	assert.True(t, ok)
	assert.Equal(t, "tkn-123", got)
}

func TestBearerAttachedAndClearedOn401(t *testing.T) {
	var gotAuth string
	client, tokens, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusUnauthorized)
	}))
	tokens.SetToken("stale-token")

	_, err := client.ListPersons(context.Background(), 0, 10, "")
	assert.Equal(t, errors.ErrCodeUnauthorized, errors.Code(err))
	assert.Equal(t, "Bearer stale-token", gotAuth)

	_, ok := tokens.Token()
	assert.False(t, ok, "401 must invalidate the stored token")
}

func TestLogoutClearsToken(t *testing.T) {
	client, tokens, _ := newTestClient(t, http.NewServeMux())
	tokens.SetToken("tkn")

	client.Logout(context.Background())

	_, ok := tokens.Token()
	assert.False(t, ok)
}
