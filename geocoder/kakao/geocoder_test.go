package kakao

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kakao-store-bot/geocoder"
)

func testGeocoder(serverURL string) *kakaoGeocoder {
	g := NewGeocoder(geocoder.WithApiKey("test-key")).(*kakaoGeocoder)
	g.baseURL = serverURL
	return g
}

func TestGeocodeParsesFirstDocument(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "KakaoAK test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "강남역", r.URL.Query().Get("query"))
		assert.Equal(t, "1", r.URL.Query().Get("size"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"documents":[{"place_name":"강남역 2호선","x":"127.0276","y":"37.4979"}]}`)
	}))
	defer server.Close()

	point, err := testGeocoder(server.URL).Geocode(context.Background(), "강남역")

	require.NoError(t, err)
	require.NotNil(t, point)
	assert.Equal(t, "강남역 2호선", point.Name)
	assert.InDelta(t, 37.4979, point.Lat, 1e-9)
	assert.InDelta(t, 127.0276, point.Lon, 1e-9)
}

func TestGeocodeNoDocumentsIsNil(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"documents":[]}`)
	}))
	defer server.Close()

	point, err := testGeocoder(server.URL).Geocode(context.Background(), "존재하지않는곳")

	require.NoError(t, err)
	assert.Nil(t, point)
}

func TestGeocodeShortCircuits(t *testing.T) {
	// no API key: every lookup answers "no result" without a network call
	noKey := NewGeocoder()

	point, err := noKey.Geocode(context.Background(), "강남역")
	require.NoError(t, err)
	assert.Nil(t, point)

	// blank place names never hit the network either
	withKey := NewGeocoder(geocoder.WithApiKey("test-key"))

	point, err = withKey.Geocode(context.Background(), "   ")
	require.NoError(t, err)
	assert.Nil(t, point)
}

func TestGeocodeHTTPErrorSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"msg":"wrong appKey"}`)
	}))
	defer server.Close()

	point, err := testGeocoder(server.URL).Geocode(context.Background(), "강남역")

	require.Error(t, err)
	assert.Nil(t, point)
	assert.Contains(t, err.Error(), "401")
}

func TestGeocodeBadCoordinates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"documents":[{"place_name":"이상한곳","x":"not-a-number","y":"37.5"}]}`)
	}))
	defer server.Close()

	_, err := testGeocoder(server.URL).Geocode(context.Background(), "이상한곳")
	assert.Error(t, err)
}
