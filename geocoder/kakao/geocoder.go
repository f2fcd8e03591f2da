package kakao

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"kakao-store-bot/geocoder"
)

const keywordSearchURL = "https://dapi.kakao.com/v2/local/search/keyword.json"

// kakaoGeocoder resolves landmark names through the Kakao local keyword
// search API. Without an API key every lookup answers "no result" so the
// caller's text-search fallback kicks in.
type kakaoGeocoder struct {
	options geocoder.Options
	client  *http.Client
	baseURL string
}

func (g *kakaoGeocoder) Geocode(ctx context.Context, place string) (*geocoder.Point, error) {
	place = strings.TrimSpace(place)
	if len(place) == 0 || len(g.options.ApiKey) == 0 {
		return nil, nil
	}

	u := g.baseURL + "?size=1&query=" + url.QueryEscape(place)

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	request.Header.Set("Authorization", "KakaoAK "+g.options.ApiKey)

	response, err := g.client.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	payload, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, err
	}

	if response.StatusCode >= 400 {
		return nil, fmt.Errorf("kakao local http %d: %s", response.StatusCode, string(payload))
	}

	var rsp struct {
		Documents []struct {
			PlaceName string `json:"place_name"`
			X         string `json:"x"` // longitude
			Y         string `json:"y"` // latitude
		} `json:"documents"`
	}
	if err := json.Unmarshal(payload, &rsp); err != nil {
		return nil, err
	}

	if len(rsp.Documents) == 0 {
		return nil, nil
	}

	doc := rsp.Documents[0]

	lat, err := strconv.ParseFloat(doc.Y, 64)
	if err != nil {
		return nil, fmt.Errorf("kakao local: bad latitude %q", doc.Y)
	}
	lon, err := strconv.ParseFloat(doc.X, 64)
	if err != nil {
		return nil, fmt.Errorf("kakao local: bad longitude %q", doc.X)
	}

	return &geocoder.Point{
		Lat:  lat,
		Lon:  lon,
		Name: doc.PlaceName,
	}, nil
}

func NewGeocoder(opts ...geocoder.Option) geocoder.Geocoder {
	options := geocoder.NewOptions(opts...)

	return &kakaoGeocoder{
		options: options,
		client: &http.Client{
			Timeout: options.Timeout,
		},
		baseURL: keywordSearchURL,
	}
}
