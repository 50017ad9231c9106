// Gaquery - Analytics Reporting Query Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gaquery

package query

import (
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/gaquery/internal/logging"
	"github.com/tomtom215/gaquery/internal/metrics"
)

// DiagnosticKind classifies a non-fatal correction.
type DiagnosticKind string

const (
	// DiagnosticCorrected means a value was replaced.
	DiagnosticCorrected DiagnosticKind = "corrected"
	// DiagnosticRemoved means a field was dropped.
	DiagnosticRemoved DiagnosticKind = "removed"
)

// Diagnostic describes a correction applied during normalization.
type Diagnostic struct {
	Kind    DiagnosticKind
	Field   string
	Value   string
	Message string
}

// DiagnosticFunc receives normalization diagnostics.
type DiagnosticFunc func(Diagnostic)

// LogDiagnostics is the default DiagnosticFunc. It writes a warning to the
// global logger.
func LogDiagnostics(d Diagnostic) {
	logging.Warn().
		Str("component", "query").
		Str("kind", string(d.Kind)).
		Str("field", d.Field).
		Str("value", d.Value).
		Msg(d.Message)
}

// Normalizer rewrites query descriptions into request-ready queries.
// The zero value uses DefaultPrefix, time.Now and LogDiagnostics.
type Normalizer struct {
	// Prefix is the namespace for dimensions, metrics, sort and filters.
	Prefix string

	// Clock resolves today, yesterday and NdaysAgo.
	Clock Clock

	// Diagnostics receives corrections and removals.
	Diagnostics DiagnosticFunc
}

// NewNormalizer returns a Normalizer for the given namespace prefix.
func NewNormalizer(prefix string) *Normalizer {
	return &Normalizer{Prefix: prefix}
}

func (n *Normalizer) prefix() string {
	if n == nil || n.Prefix == "" {
		return DefaultPrefix
	}
	return n.Prefix
}

func (n *Normalizer) now() time.Time {
	if n == nil || n.Clock == nil {
		return time.Now()
	}
	return n.Clock()
}

func (n *Normalizer) emit(d Diagnostic) {
	metrics.QueryCorrections.WithLabelValues(d.Field, string(d.Kind)).Inc()
	if n == nil || n.Diagnostics == nil {
		LogDiagnostics(d)
		return
	}
	n.Diagnostics(d)
}

// NormalizeMap decodes a loosely typed mapping and normalizes it.
func (n *Normalizer) NormalizeMap(m map[string]any) (Normalized, error) {
	d, err := FromMap(m)
	if err != nil {
		metrics.QueriesNormalized.WithLabelValues("invalid").Inc()
		return Normalized{}, err
	}
	return n.Normalize(d)
}

// Normalize validates d and returns the normalized query. d is not modified.
func (n *Normalizer) Normalize(d Description) (Normalized, error) {
	out, err := n.normalize(d)
	if err != nil {
		metrics.QueriesNormalized.WithLabelValues("invalid").Inc()
		return Normalized{}, err
	}
	metrics.QueriesNormalized.WithLabelValues("ok").Inc()
	return Normalized{values: out}, nil
}

func (n *Normalizer) normalize(d Description) (map[Field]string, error) {
	prefix := n.prefix()
	now := n.now()
	out := make(map[Field]string, len(fieldOrder))

	start, err := resolveStartDate(d.StartDate, now)
	if err != nil {
		return nil, err
	}
	out[FieldStartDate] = start

	end, err := resolveEndDate(d.EndDate, now)
	if err != nil {
		return nil, err
	}
	out[FieldEndDate] = end

	if !d.IDs.IsSet() {
		return nil, invalid(FieldIDs, "", "ids is required")
	}
	if out[FieldIDs], err = prefixList(FieldIDs, d.IDs, IDPrefix); err != nil {
		return nil, err
	}

	if d.Dimensions.IsSet() {
		if out[FieldDimensions], err = prefixList(FieldDimensions, d.Dimensions, prefix); err != nil {
			return nil, err
		}
	}

	if !d.Metrics.IsSet() {
		return nil, invalid(FieldMetrics, "", "metrics is required")
	}
	if out[FieldMetrics], err = prefixList(FieldMetrics, d.Metrics, prefix); err != nil {
		return nil, err
	}

	if d.Sort.IsSet() {
		if out[FieldSort], err = encodeSort(d.Sort, prefix); err != nil {
			return nil, err
		}
	}

	if d.Filters.IsSet() {
		if out[FieldFilters], err = encodeFilters(d.Filters, prefix); err != nil {
			return nil, err
		}
	}

	for _, f := range []Field{FieldStartIndex, FieldMaxResults} {
		v := d.Get(f)
		if !v.IsSet() {
			continue
		}
		if out[f], err = scalar(f, v); err != nil {
			return nil, err
		}
	}

	if d.SamplingLevel.IsSet() {
		level, lerr := scalar(FieldSamplingLevel, d.SamplingLevel)
		if lerr != nil {
			return nil, lerr
		}
		out[FieldSamplingLevel] = n.samplingLevel(level)
	}

	for _, f := range []Field{FieldSegment, FieldOutput, FieldUserIP, FieldQuotaUser} {
		v := d.Get(f)
		if !v.IsSet() {
			continue
		}
		if out[f], err = scalar(f, v); err != nil {
			return nil, err
		}
	}
	if d.Fields.IsSet() {
		out[FieldFields] = strings.Join(d.Fields.Items(), ",")
	}

	for _, key := range d.Unknown {
		n.emit(Diagnostic{
			Kind:    DiagnosticRemoved,
			Field:   key,
			Message: fmt.Sprintf("removed unrecognized query field %q", key),
		})
	}

	return out, nil
}

func (n *Normalizer) samplingLevel(level string) string {
	upper := strings.ToUpper(level)
	switch upper {
	case SamplingDefault, SamplingFaster, SamplingHigherPrecision:
		return upper
	}
	n.emit(Diagnostic{
		Kind:    DiagnosticCorrected,
		Field:   string(FieldSamplingLevel),
		Value:   level,
		Message: fmt.Sprintf("invalid samplingLevel %q replaced with %s", level, SamplingDefault),
	})
	return SamplingDefault
}

// scalar returns the single element of v. Lists of one element are accepted.
func scalar(f Field, v Value) (string, error) {
	items := v.Items()
	if len(items) != 1 {
		return "", invalid(f, v.String(), "expected a single value")
	}
	return items[0], nil
}

// splitTerms flattens list elements and comma separated strings into terms.
func splitTerms(f Field, v Value) ([]string, error) {
	var terms []string
	for _, item := range v.Items() {
		for _, term := range strings.Split(item, ",") {
			term = strings.TrimSpace(term)
			if term == "" {
				return nil, invalid(f, v.String(), "empty element")
			}
			terms = append(terms, term)
		}
	}
	if len(terms) == 0 {
		return nil, invalid(f, v.String(), "no elements")
	}
	return terms, nil
}

func maybePrefix(s, prefix string) string {
	if strings.HasPrefix(s, prefix) {
		return s
	}
	return prefix + s
}

func prefixList(f Field, v Value, prefix string) (string, error) {
	terms, err := splitTerms(f, v)
	if err != nil {
		return "", err
	}
	for i, t := range terms {
		terms[i] = maybePrefix(t, prefix)
	}
	return strings.Join(terms, ","), nil
}

func encodeSort(v Value, prefix string) (string, error) {
	terms, err := splitTerms(FieldSort, v)
	if err != nil {
		return "", err
	}
	for i, t := range terms {
		desc := strings.HasPrefix(t, "-")
		name := strings.TrimPrefix(t, "-")
		if name == "" {
			return "", invalid(FieldSort, t, "sort term has no field name")
		}
		name = maybePrefix(name, prefix)
		if desc {
			name = "-" + name
		}
		terms[i] = name
	}
	return strings.Join(terms, ","), nil
}

// connectives maps filter connectives to their rendered symbol.
var connectives = map[string]string{
	"AND": ";",
	"OR":  ",",
}

func encodeFilters(v Value, prefix string) (string, error) {
	items := v.Items()
	if len(items) == 1 {
		if items[0] == "" {
			return "", invalid(FieldFilters, "", "empty filter")
		}
		return maybePrefix(items[0], prefix), nil
	}

	operands := make([]string, 0, len(items)/2+1)
	symbols := make([]string, 0, len(items)/2)
	for i, item := range items {
		if i%2 == 0 {
			if item == "" {
				return "", invalid(FieldFilters, v.String(),
					fmt.Sprintf("malformed filter: empty operand at position %d", i))
			}
			operands = append(operands, item)
			continue
		}
		sym, ok := connectives[strings.ToUpper(item)]
		if !ok {
			return "", invalid(FieldFilters, v.String(),
				fmt.Sprintf("malformed filter: connective %q at position %d is not AND or OR", item, i))
		}
		symbols = append(symbols, sym)
	}
	if len(operands)-len(symbols) != 1 {
		return "", invalid(FieldFilters, v.String(),
			fmt.Sprintf("malformed filter: %d operands for %d connectives", len(operands), len(symbols)))
	}

	var b strings.Builder
	for i, sym := range symbols {
		b.WriteString(maybePrefix(operands[i], prefix))
		b.WriteString(sym)
	}
	b.WriteString(maybePrefix(operands[len(operands)-1], prefix))
	return b.String(), nil
}
