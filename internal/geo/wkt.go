package geo

import (
	"fmt"
	"strconv"
	"strings"
)

// WKT serialization for the PostGIS geometry columns. Only POLYGON and
// MULTIPOLYGON are needed; points go through ST_MakePoint directly.

// WKT renders the polygon as "POLYGON((lon lat, ...), ...)".
func (p Polygon) WKT() string {
	var sb strings.Builder
	sb.WriteString("POLYGON(")
	writeRings(&sb, p.Rings)
	sb.WriteString(")")
	return sb.String()
}

// WKT renders the multipolygon as "MULTIPOLYGON(((lon lat, ...)), ...)".
func (m MultiPolygon) WKT() string {
	var sb strings.Builder
	sb.WriteString("MULTIPOLYGON(")
	for i, p := range m {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString("(")
		writeRings(&sb, p.Rings)
		sb.WriteString(")")
	}
	sb.WriteString(")")
	return sb.String()
}

func writeRings(sb *strings.Builder, rings []Ring) {
	for i, ring := range rings {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString("(")
		for j, pt := range ring {
			if j > 0 {
				sb.WriteString(",")
			}
			fmt.Fprintf(sb, "%s %s",
				strconv.FormatFloat(pt.Lon, 'f', -1, 64),
				strconv.FormatFloat(pt.Lat, 'f', -1, 64))
		}
		sb.WriteString(")")
	}
}

// ParsePolygonWKT parses a POLYGON produced by ST_AsText.
func ParsePolygonWKT(s string) (Polygon, error) {
	body, err := wktBody(s, "POLYGON")
	if err != nil {
		return Polygon{}, err
	}
	rings, err := parseRings(body)
	if err != nil {
		return Polygon{}, err
	}
	return Polygon{Rings: rings}, nil
}

// ParseMultiPolygonWKT parses a MULTIPOLYGON produced by ST_AsText. A plain
// POLYGON is accepted and wrapped, since reverse-geocoded boundaries come
// back as either.
func ParseMultiPolygonWKT(s string) (MultiPolygon, error) {
	trimmed := strings.TrimSpace(s)
	if strings.HasPrefix(strings.ToUpper(trimmed), "POLYGON") {
		p, err := ParsePolygonWKT(trimmed)
		if err != nil {
			return nil, err
		}
		return MultiPolygon{p}, nil
	}
	body, err := wktBody(trimmed, "MULTIPOLYGON")
	if err != nil {
		return nil, err
	}
	var out MultiPolygon
	for _, part := range splitTopLevel(body) {
		part = strings.TrimSpace(part)
		if !strings.HasPrefix(part, "(") || !strings.HasSuffix(part, ")") {
			return nil, fmt.Errorf("malformed multipolygon member: %q", part)
		}
		rings, err := parseRings(part[1 : len(part)-1])
		if err != nil {
			return nil, err
		}
		out = append(out, Polygon{Rings: rings})
	}
	return out, nil
}

func wktBody(s, keyword string) (string, error) {
	trimmed := strings.TrimSpace(s)
	upper := strings.ToUpper(trimmed)
	if !strings.HasPrefix(upper, keyword) {
		return "", fmt.Errorf("expected %s, got %q", keyword, trimmed)
	}
	rest := strings.TrimSpace(trimmed[len(keyword):])
	if !strings.HasPrefix(rest, "(") || !strings.HasSuffix(rest, ")") {
		return "", fmt.Errorf("malformed %s body", keyword)
	}
	return rest[1 : len(rest)-1], nil
}

func parseRings(body string) ([]Ring, error) {
	var rings []Ring
	for _, part := range splitTopLevel(body) {
		part = strings.TrimSpace(part)
		if !strings.HasPrefix(part, "(") || !strings.HasSuffix(part, ")") {
			return nil, fmt.Errorf("malformed ring: %q", part)
		}
		var ring Ring
		for _, pair := range strings.Split(part[1:len(part)-1], ",") {
			fields := strings.Fields(strings.TrimSpace(pair))
			if len(fields) < 2 {
				return nil, fmt.Errorf("malformed coordinate pair: %q", pair)
			}
			lon, err := strconv.ParseFloat(fields[0], 64)
			if err != nil {
				return nil, fmt.Errorf("bad longitude %q: %w", fields[0], err)
			}
			lat, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				return nil, fmt.Errorf("bad latitude %q: %w", fields[1], err)
			}
			ring = append(ring, Point{Lat: lat, Lon: lon})
		}
		rings = append(rings, ring)
	}
	if len(rings) == 0 {
		return nil, fmt.Errorf("no rings found")
	}
	return rings, nil
}

// splitTopLevel splits on commas that sit outside any parentheses.
func splitTopLevel(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}
