package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"lagospaces/server/config"
)

var ErrNoResults = errors.New("no coordinates found for location")

type Geocoder struct {
	logger    *logrus.Logger
	baseURL   string
	cache     map[string][]float64
	cacheLock sync.RWMutex
	client    *http.Client
}

// NewGeocoder creates a geocoder. An empty baseURL limits lookups to the location catalog.
func NewGeocoder(logger *logrus.Logger, baseURL string) *Geocoder {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return &Geocoder{
		logger:  logger,
		baseURL: strings.TrimRight(baseURL, "/"),
		cache:   make(map[string][]float64),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type nominatimResponse []struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Resolve finds coordinates for a free-form location such as "Lekki Phase 1, Lagos".
// Known neighbourhoods resolve to their catalog centre without a network call.
func (g *Geocoder) Resolve(ctx context.Context, location string) (float64, float64, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return 0, 0, ErrNoResults
	}

	if loc := catalogMatch(location); loc != nil {
		return loc.Center[0], loc.Center[1], nil
	}

	cacheKey := strings.ToLower(location)
	g.cacheLock.RLock()
	coords, ok := g.cache[cacheKey]
	g.cacheLock.RUnlock()
	if ok {
		g.logger.WithFields(logrus.Fields{
			"location":  location,
			"latitude":  coords[0],
			"longitude": coords[1],
			"source":    "cache",
		}).Debug("Found coordinates in cache")
		return coords[0], coords[1], nil
	}

	if g.baseURL == "" {
		return 0, 0, ErrNoResults
	}

	lat, lon, err := g.lookup(ctx, location)
	if err != nil {
		return 0, 0, err
	}

	g.cacheLock.Lock()
	g.cache[cacheKey] = []float64{lat, lon}
	g.cacheLock.Unlock()

	return lat, lon, nil
}

func catalogMatch(location string) *config.Location {
	lower := strings.ToLower(location)
	for _, loc := range config.SupportedLocations {
		if strings.Contains(lower, strings.ToLower(loc.Name)) {
			l := loc
			return &l
		}
	}
	return nil
}

func (g *Geocoder) lookup(ctx context.Context, location string) (float64, float64, error) {
	query := location
	if !strings.Contains(strings.ToLower(query), "nigeria") {
		query += ", Nigeria"
	}

	g.logger.WithField("location", query).Info("Geocoding location with Nominatim")

	params := url.Values{
		"q":            []string{query},
		"format":       []string{"json"},
		"limit":        []string{"1"},
		"countrycodes": []string{"ng"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/search", nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.URL.RawQuery = params.Encode()
	req.Header.Set("User-Agent", "LagoSpaces/1.0")

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.WithError(err).WithField("location", query).Error("Geocoding request failed")
		return 0, 0, fmt.Errorf("geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("geocoding request failed with status %d", resp.StatusCode)
	}

	var result nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		g.logger.WithError(err).WithField("location", query).Error("Failed to parse response")
		return 0, 0, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(result) == 0 {
		g.logger.WithField("location", query).Warn("No results found")
		return 0, 0, ErrNoResults
	}

	lat, err := strconv.ParseFloat(result[0].Lat, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid latitude %q: %w", result[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(result[0].Lon, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid longitude %q: %w", result[0].Lon, err)
	}

	g.logger.WithFields(logrus.Fields{
		"location":  query,
		"latitude":  lat,
		"longitude": lon,
		"source":    "nominatim",
	}).Info("Successfully geocoded location")

	return lat, lon, nil
}
