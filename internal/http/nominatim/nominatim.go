// Package nominatim is a client for the OpenStreetMap Nominatim geocoding
// API. It resolves issue coordinates to addresses and fetches administrative
// boundaries for area tagging.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/go-querystring/query"
	"github.com/pkg/errors"

	"github.com/reportit/reportit_api/internal/geo"
)

const (
	defaultBaseURL = "https://nominatim.openstreetmap.org"
	userAgent      = "reportit-api/1.0"
)

// Client handles communication with the Nominatim API.
type Client struct {
	BaseURL    *url.URL
	HTTPClient *http.Client
}

// NewClient creates a Nominatim client. An empty baseURL falls back to the
// public OSM instance.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	u, _ := url.Parse(baseURL)
	return &Client{
		BaseURL: u,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     30 * time.Second,
				TLSHandshakeTimeout: 5 * time.Second,
			},
		},
	}
}

// ReverseQuery represents parameters for reverse geocoding requests.
type ReverseQuery struct {
	Lat            float64 `url:"lat"`
	Lon            float64 `url:"lon"`
	Format         string  `url:"format"`
	Zoom           *int    `url:"zoom,omitempty"`
	PolygonGeoJSON int     `url:"polygon_geojson,omitempty"`
}

// SearchQuery represents parameters for forward search requests.
type SearchQuery struct {
	Q              string `url:"q"`
	Format         string `url:"format"`
	Limit          int    `url:"limit,omitempty"`
	PolygonGeoJSON int    `url:"polygon_geojson,omitempty"`
}

type address struct {
	Road         string `json:"road,omitempty"`
	Suburb       string `json:"suburb,omitempty"`
	CityDistrict string `json:"city_district,omitempty"`
	City         string `json:"city,omitempty"`
	Town         string `json:"town,omitempty"`
	Village      string `json:"village,omitempty"`
	State        string `json:"state,omitempty"`
	Country      string `json:"country,omitempty"`
	CountryCode  string `json:"country_code,omitempty"`
}

type placeResponse struct {
	PlaceID     int64           `json:"place_id"`
	DisplayName string          `json:"display_name"`
	Lat         string          `json:"lat"`
	Lon         string          `json:"lon"`
	Address     address         `json:"address"`
	GeoJSON     json.RawMessage `json:"geojson,omitempty"`
}

// Place is the resolved location for a coordinate pair.
type Place struct {
	DisplayName string `json:"display_name"`
	City        string `json:"city"`
	District    string `json:"district"`
	Country     string `json:"country"`
	CountryCode string `json:"country_code"`
}

// Boundary is a named administrative area with its polygon geometry.
type Boundary struct {
	Name     string
	City     string
	Country  string
	Geometry geo.MultiPolygon
}

// ReverseGeocode resolves a coordinate to its address.
// Endpoint: /reverse
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (*Place, error) {
	params := ReverseQuery{Lat: lat, Lon: lon, Format: "jsonv2"}

	reqURL, err := c.buildURL("/reverse", params)
	if err != nil {
		return nil, errors.Wrap(err, "build reverse geocode URL")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create reverse geocode request")
	}

	var result placeResponse
	if err := c.do(req, &result); err != nil {
		return nil, errors.Wrap(err, "execute reverse geocode request")
	}

	city := result.Address.City
	if city == "" {
		city = result.Address.Town
	}
	if city == "" {
		city = result.Address.Village
	}
	district := result.Address.CityDistrict
	if district == "" {
		district = result.Address.Suburb
	}

	return &Place{
		DisplayName: result.DisplayName,
		City:        city,
		District:    district,
		Country:     result.Address.Country,
		CountryCode: result.Address.CountryCode,
	}, nil
}

// FetchBoundary looks up a named administrative area and returns its polygon
// geometry for area tagging.
// Endpoint: /search with polygon_geojson=1
func (c *Client) FetchBoundary(ctx context.Context, name string) (*Boundary, error) {
	params := SearchQuery{Q: name, Format: "jsonv2", Limit: 1, PolygonGeoJSON: 1}

	reqURL, err := c.buildURL("/search", params)
	if err != nil {
		return nil, errors.Wrap(err, "build boundary search URL")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create boundary search request")
	}

	var results []placeResponse
	if err := c.do(req, &results); err != nil {
		return nil, errors.Wrap(err, "execute boundary search request")
	}
	if len(results) == 0 {
		return nil, errors.Errorf("no boundary found for %q", name)
	}

	res := results[0]
	mp, err := parseGeoJSONGeometry(res.GeoJSON)
	if err != nil {
		return nil, errors.Wrapf(err, "parse boundary geometry for %q", name)
	}

	city := res.Address.City
	if city == "" {
		city = res.Address.Town
	}

	return &Boundary{
		Name:     res.DisplayName,
		City:     city,
		Country:  res.Address.Country,
		Geometry: mp,
	}, nil
}

type geoJSONGeometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// parseGeoJSONGeometry converts a GeoJSON Polygon or MultiPolygon into the
// internal multipolygon type. GeoJSON positions are [lon, lat].
func parseGeoJSONGeometry(raw json.RawMessage) (geo.MultiPolygon, error) {
	if len(raw) == 0 {
		return geo.MultiPolygon{}, errors.New("missing geometry")
	}

	var g geoJSONGeometry
	if err := json.Unmarshal(raw, &g); err != nil {
		return geo.MultiPolygon{}, err
	}

	toPolygon := func(rings [][][]float64) (geo.Polygon, error) {
		var p geo.Polygon
		for _, ring := range rings {
			r := make(geo.Ring, 0, len(ring))
			for _, pos := range ring {
				if len(pos) < 2 {
					return geo.Polygon{}, errors.New("malformed position")
				}
				r = append(r, geo.Point{Lat: pos[1], Lon: pos[0]})
			}
			p.Rings = append(p.Rings, r)
		}
		return p, nil
	}

	switch g.Type {
	case "Polygon":
		var rings [][][]float64
		if err := json.Unmarshal(g.Coordinates, &rings); err != nil {
			return geo.MultiPolygon{}, err
		}
		p, err := toPolygon(rings)
		if err != nil {
			return geo.MultiPolygon{}, err
		}
		return geo.MultiPolygon{p}, nil
	case "MultiPolygon":
		var polys [][][][]float64
		if err := json.Unmarshal(g.Coordinates, &polys); err != nil {
			return geo.MultiPolygon{}, err
		}
		var mp geo.MultiPolygon
		for _, rings := range polys {
			p, err := toPolygon(rings)
			if err != nil {
				return geo.MultiPolygon{}, err
			}
			mp = append(mp, p)
		}
		return mp, nil
	default:
		return geo.MultiPolygon{}, errors.Errorf("unsupported geometry type %q", g.Type)
	}
}

// buildURL constructs the API URL with query parameters.
func (c *Client) buildURL(endpoint string, queryParams interface{}) (string, error) {
	rel, err := url.Parse(endpoint)
	if err != nil {
		return "", errors.Wrap(err, "parse endpoint")
	}
	u := c.BaseURL.ResolveReference(rel)

	q := u.Query()
	if queryParams != nil {
		v, err := query.Values(queryParams)
		if err != nil {
			return "", errors.Wrap(err, "encode query parameters")
		}
		for k, vals := range v {
			for _, val := range vals {
				q.Add(k, val)
			}
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// do executes HTTP requests and decodes JSON responses.
func (c *Client) do(req *http.Request, v interface{}) error {
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "execute HTTP request")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			return errors.Wrap(err, "decode response")
		}
	}
	return nil
}
