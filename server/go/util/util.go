/*
	Copyright 2025 Google Inc.
	Licensed under the Apache License, Version 2.0 (the "License");
	you may not use this file except in compliance with the License.
	You may obtain a copy of the License at
		https://www.apache.org/licenses/LICENSE-2.0
	Unless required by applicable law or agreed to in writing, software
	distributed under the License is distributed on an "AS IS" BASIS,
	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
	See the License for the specific language governing permissions and
	limitations under the License.
*/

// Package util defines the chart-data response model shared by every chart
// builder:
//
// V, a typed value (string, string index, strings, string indices, integer,
// integers, or double), with {type}Value constructors and Expect{type}Value
// accessors that fail on a type mismatch;
//
// Datum, a property map plus ordered children, and Data, the complete
// response with its string table;
//
// DataResponseBuilder and DataBuilder, for assembling responses
// programmatically through PropertyUpdates.
package util

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
)

type valueType int

// Enumerated value types.  The numbering is part of the wire format.
const (
	unsetValue valueType = iota
	StringValueType
	StringIndexValueType
	StringsValueType
	StringIndicesValueType
	IntegerValueType
	IntegersValueType
	DoubleValueType
	DoublesValueType
)

// V is a single typed value in a request or response.
type V struct {
	V any
	T valueType
}

// PrettyPrint returns the receiver, deterministically prettyprinted, with
// string indices resolved through st.  Only for use in tests.
func (v *V) PrettyPrint(st []string) string {
	var ret string
	var err error
	switch v.T {
	case unsetValue:
		ret = "unset"
	case StringValueType:
		ret, err = ExpectStringValue(v)
		ret = "'" + ret + "'"
	case StringIndexValueType:
		var strIdx int64
		if strIdx, err = expectStringIndexValue(v); err == nil {
			ret = "'" + st[strIdx] + "'"
		}
	case StringsValueType:
		var strs []string
		strs, err = ExpectStringsValue(v)
		ret = "[ '" + strings.Join(strs, "', '") + "' ]"
	case StringIndicesValueType:
		var strIdxs []int64
		if strIdxs, err = expectStringIndicesValue(v); err == nil {
			strs := make([]string, len(strIdxs))
			for idx, strIdx := range strIdxs {
				strs[idx] = st[strIdx]
			}
			ret = "[ '" + strings.Join(strs, "', '") + "' ]"
		}
	case IntegerValueType:
		var i int64
		if i, err = ExpectIntegerValue(v); err == nil {
			ret = strconv.FormatInt(i, 10)
		}
	case IntegersValueType:
		var ints []int64
		if ints, err = ExpectIntegersValue(v); err == nil {
			strs := make([]string, len(ints))
			for idx, i := range ints {
				strs[idx] = strconv.FormatInt(i, 10)
			}
			ret = "[ " + strings.Join(strs, ", ") + " ]"
		}
	case DoubleValueType:
		var d float64
		if d, err = ExpectDoubleValue(v); err == nil {
			ret = fmt.Sprintf("%.6f", d)
		}
	case DoublesValueType:
		var ds []float64
		if ds, err = ExpectDoublesValue(v); err == nil {
			strs := make([]string, len(ds))
			for idx, d := range ds {
				strs[idx] = fmt.Sprintf("%.6f", d)
			}
			ret = "[ " + strings.Join(strs, ", ") + " ]"
		}
	}
	if err != nil {
		return "error: " + err.Error()
	}
	return ret
}

func jsonDouble(d float64) any {
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return strconv.FormatFloat(d, 'f', -1, 64)
	}
	return d
}

// MarshalJSON encodes a V as the two-element array [type, value].  Doubles
// that JSON cannot carry (NaN and the infinities) are sent as strings.
func (v *V) MarshalJSON() ([]byte, error) {
	switch val := v.V.(type) {
	case float64:
		return json.Marshal([2]any{v.T, jsonDouble(val)})
	case []float64:
		ds := make([]any, len(val))
		for idx, d := range val {
			ds[idx] = jsonDouble(d)
		}
		return json.Marshal([2]any{v.T, ds})
	}
	return json.Marshal([2]any{v.T, v.V})
}

func doubleFromAny(d any) (float64, error) {
	switch d := d.(type) {
	case json.Number:
		return d.Float64()
	case string:
		return strconv.ParseFloat(d, 64)
	default:
		return 0, fmt.Errorf("expected a number")
	}
}

func (v *V) fromAny(got []any) error {
	if len(got) != 2 {
		return fmt.Errorf("value must be a [type, value] pair")
	}
	num, ok := got[0].(json.Number)
	if !ok {
		return fmt.Errorf("value type must be a number")
	}
	t, err := num.Int64()
	if err != nil {
		return err
	}
	v.T = valueType(t)
	tv := got[1]
	switch v.T {
	case StringIndexValueType, IntegerValueType:
		n, ok := tv.(json.Number)
		if !ok {
			return fmt.Errorf("expected a number for value type %d", v.T)
		}
		v.V, err = n.Int64()
	case StringsValueType:
		strIfs, ok := tv.([]any)
		if !ok {
			return fmt.Errorf("expected a list for value type %d", v.T)
		}
		strs := make([]string, len(strIfs))
		for idx, strIf := range strIfs {
			s, ok := strIf.(string)
			if !ok {
				return fmt.Errorf("expected a string list")
			}
			if strs[idx], err = url.QueryUnescape(s); err != nil {
				return err
			}
		}
		v.V = strs
	case StringIndicesValueType, IntegersValueType:
		nums, ok := tv.([]any)
		if !ok {
			return fmt.Errorf("expected a list for value type %d", v.T)
		}
		ints := make([]int64, len(nums))
		for idx, numIf := range nums {
			n, ok := numIf.(json.Number)
			if !ok {
				return fmt.Errorf("expected a number list")
			}
			if ints[idx], err = n.Int64(); err != nil {
				return err
			}
		}
		v.V = ints
	case DoubleValueType:
		v.V, err = doubleFromAny(tv)
	case DoublesValueType:
		nums, ok := tv.([]any)
		if !ok {
			return fmt.Errorf("expected a list for value type %d", v.T)
		}
		ds := make([]float64, len(nums))
		for idx, numIf := range nums {
			if ds[idx], err = doubleFromAny(numIf); err != nil {
				return err
			}
		}
		v.V = ds
	default:
		v.V = tv
	}
	return err
}

// UnmarshalJSON decodes a [type, value] pair into the receiver.
func (v *V) UnmarshalJSON(data []byte) error {
	var got []any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&got); err != nil {
		return err
	}
	return v.fromAny(got)
}

// Datum is a single node in a data series response.
type Datum struct {
	Properties map[int64]*V
	Children   []*Datum
}

// PrettyPrint returns the receiver deterministically prettyprinted, with
// properties in increasing key-name order.  Only for use in tests.
func (d *Datum) PrettyPrint(indent string, st []string) string {
	ret := []string{}
	keys := make([]int64, 0, len(d.Properties))
	for k := range d.Properties {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool {
		return st[keys[a]] < st[keys[b]]
	})
	for _, k := range keys {
		ret = append(ret,
			fmt.Sprintf("%sProp '%s': %s", indent, st[k], d.Properties[k].PrettyPrint(st)),
		)
	}
	for _, child := range d.Children {
		ret = append(ret,
			fmt.Sprintf("%sChild:", indent),
			child.PrettyPrint(indent+"  ", st),
		)
	}
	return strings.Join(ret, "\n")
}

// MarshalJSON encodes a Datum as [[[key, V]...], [Datum...]], with keys
// being string-table indices in increasing order.
func (d *Datum) MarshalJSON() ([]byte, error) {
	keys := make([]int64, 0, len(d.Properties))
	for k := range d.Properties {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool {
		return keys[a] < keys[b]
	})
	props := make([]any, len(keys))
	for idx, k := range keys {
		props[idx] = []any{k, d.Properties[k]}
	}
	children := make([]any, len(d.Children))
	for idx, child := range d.Children {
		children[idx] = child
	}
	return json.Marshal([]any{props, children})
}

// DataSeriesRequest is a request for one data series.
type DataSeriesRequest struct {
	QueryName  string
	SeriesName string
	Options    map[string]*V
}

// DataSeries is a complete data series response.
type DataSeries struct {
	SeriesName string
	Root       *Datum
}

// PrettyPrint returns the receiver deterministically prettyprinted.
// Only for use in tests.
func (ds *DataSeries) PrettyPrint(indent string, st []string) string {
	return strings.Join([]string{
		fmt.Sprintf("%sSeries %s", indent, ds.SeriesName),
		indent + "  " + "Root:",
		ds.Root.PrettyPrint(indent+"    ", st),
	}, "\n")
}

// DataRequest is a request for one or more data series, sharing a set of
// global filters.
type DataRequest struct {
	GlobalFilters  map[string]*V
	SeriesRequests []*DataSeriesRequest
}

// DataRequestFromJSON attempts to construct a DataRequest from the provided
// JSON.
func DataRequestFromJSON(j []byte) (*DataRequest, error) {
	ret := &DataRequest{}
	err := json.Unmarshal(j, ret)
	return ret, err
}

// Data is a complete data response.
type Data struct {
	StringTable []string
	DataSeries  []*DataSeries
}

// PrettyPrint returns the receiver deterministically prettyprinted.
// Only for use in tests.
func (d *Data) PrettyPrint() string {
	ret := []string{"Data:"}
	for _, series := range d.DataSeries {
		ret = append(ret, series.PrettyPrint("  ", d.StringTable))
	}
	return strings.Join(ret, "\n")
}

// stringTable interns strings as unique integers.  It is thread-safe.
type stringTable struct {
	stringsToIndices map[string]int64
	stringsByIndex   []string
	mu               sync.RWMutex
}

func newStringTable(strs ...string) *stringTable {
	ret := &stringTable{
		stringsToIndices: map[string]int64{},
	}
	for _, str := range strs {
		ret.stringIndex(str)
	}
	return ret
}

func (st *stringTable) lookupStringIndex(str string) (int64, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	idx, ok := st.stringsToIndices[str]
	return idx, ok
}

// stringIndex returns the index of str, interning it if necessary.
func (st *stringTable) stringIndex(str string) int64 {
	if idx, ok := st.lookupStringIndex(str); ok {
		return idx
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	// Another writer may have interned str since the lookup above.
	if idx, ok := st.stringsToIndices[str]; ok {
		return idx
	}
	idx := int64(len(st.stringsByIndex))
	st.stringsByIndex = append(st.stringsByIndex, str)
	st.stringsToIndices[str] = idx
	return idx
}

func (st *stringTable) snapshot() []string {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return append([]string{}, st.stringsByIndex...)
}

// buildErrors collects the errors raised while building a response.
type buildErrors struct {
	errs []error
	mu   sync.Mutex
}

func (be *buildErrors) add(err error) {
	be.mu.Lock()
	defer be.mu.Unlock()
	be.errs = append(be.errs, err)
}

func (be *buildErrors) failed() bool {
	be.mu.Lock()
	defer be.mu.Unlock()
	return len(be.errs) > 0
}

func (be *buildErrors) toError() error {
	be.mu.Lock()
	defer be.mu.Unlock()
	if len(be.errs) == 0 {
		return nil
	}
	msgs := make([]string, len(be.errs))
	for idx, err := range be.errs {
		msgs[idx] = err.Error()
	}
	return fmt.Errorf("%s", strings.Join(msgs, ", "))
}

// DataResponseBuilder assembles the response to a DataRequest.  It is safe
// for concurrent use by multiple data sources.
type DataResponseBuilder struct {
	st   *stringTable
	errs *buildErrors
	d    *Data
	mu   sync.Mutex
}

// NewDataResponseBuilder returns a new, empty DataResponseBuilder.
func NewDataResponseBuilder() *DataResponseBuilder {
	return &DataResponseBuilder{
		st:   newStringTable(),
		errs: &buildErrors{},
		d: &Data{
			StringTable: []string{},
			DataSeries:  []*DataSeries{},
		},
	}
}

// DataBuilder is implemented by types that can assemble responses.
type DataBuilder interface {
	With(updates ...PropertyUpdate) DataBuilder
	Child() DataBuilder
}

// DataSeries adds a new data series answering req, returning a DataBuilder
// for its root Datum.
func (drb *DataResponseBuilder) DataSeries(req *DataSeriesRequest) DataBuilder {
	ret := newDatumBuilder(drb.errs, drb.st)
	ds := &DataSeries{
		SeriesName: req.SeriesName,
		Root:       ret.d,
	}
	drb.mu.Lock()
	drb.d.DataSeries = append(drb.d.DataSeries, ds)
	drb.mu.Unlock()
	return ret
}

// Data completes and returns the response, or the errors raised while
// building it.
func (drb *DataResponseBuilder) Data() (*Data, error) {
	if err := drb.errs.toError(); err != nil {
		return nil, err
	}
	drb.d.StringTable = drb.st.snapshot()
	return drb.d, nil
}

// StringValue returns a new Value wrapping the provided string.
func StringValue(str string) *V {
	return &V{V: str, T: StringValueType}
}

// StringIndexValue returns a new Value wrapping the provided string index.
func StringIndexValue(strIdx int64) *V {
	return &V{V: strIdx, T: StringIndexValueType}
}

// StringsValue returns a new Value wrapping the provided strings.
func StringsValue(strs ...string) *V {
	return &V{V: strs, T: StringsValueType}
}

// StringIndicesValue returns a new Value wrapping the provided string
// indices.
func StringIndicesValue(strIdxs ...int64) *V {
	return &V{V: strIdxs, T: StringIndicesValueType}
}

// IntegerValue returns a new Value wrapping the provided int64.
func IntegerValue(i int64) *V {
	return &V{V: i, T: IntegerValueType}
}

// IntegersValue returns a new Value wrapping the provided int64s.
func IntegersValue(ints ...int64) *V {
	return &V{V: ints, T: IntegersValueType}
}

// DoubleValue returns a new Value wrapping the provided float64.
func DoubleValue(f float64) *V {
	return &V{V: f, T: DoubleValueType}
}

// ExpectStringValue expects the provided Value to be a string, returning
// that string or an error if it isn't.
func ExpectStringValue(val *V) (string, error) {
	if val.T != StringValueType {
		return "", fmt.Errorf("expected value type 'str'")
	}
	return url.QueryUnescape(val.V.(string))
}

func expectStringIndexValue(val *V) (int64, error) {
	if val.T != StringIndexValueType {
		return 0, fmt.Errorf("expected value type 'str_idx'")
	}
	return val.V.(int64), nil
}

// ExpectStringsValue expects the provided Value to be a Strings, returning
// its string slice or an error if it isn't.
func ExpectStringsValue(val *V) ([]string, error) {
	if val.T != StringsValueType {
		return nil, fmt.Errorf("expected value type 'strs'")
	}
	return val.V.([]string), nil
}

func expectStringIndicesValue(val *V) ([]int64, error) {
	if val.T != StringIndicesValueType {
		return nil, fmt.Errorf("expected value type 'str_idxs'")
	}
	return val.V.([]int64), nil
}

// ExpectIntegerValue expects the provided Value to be an integer, returning
// that integer or an error if it isn't.
func ExpectIntegerValue(val *V) (int64, error) {
	if val.T != IntegerValueType {
		return 0, fmt.Errorf("expected value type 'int'")
	}
	return val.V.(int64), nil
}

// ExpectIntegersValue expects the provided Value to be an Integers, returning
// its int64 slice or an error if it isn't.
func ExpectIntegersValue(val *V) ([]int64, error) {
	if val.T != IntegersValueType {
		return nil, fmt.Errorf("expected value type 'ints'")
	}
	return val.V.([]int64), nil
}

// DoublesValue returns a new Value wrapping the provided float64s.
func DoublesValue(ds ...float64) *V {
	return &V{V: ds, T: DoublesValueType}
}

// ExpectDoublesValue expects the provided Value to be a Doubles, returning
// its float64 slice or an error if it isn't.
func ExpectDoublesValue(val *V) ([]float64, error) {
	if val.T != DoublesValueType {
		return nil, fmt.Errorf("expected value type 'dbls'")
	}
	return val.V.([]float64), nil
}

// ExpectDoubleValue expects the provided Value to be a float64, returning
// that float or an error if it isn't.
func ExpectDoubleValue(val *V) (float64, error) {
	if val.T != DoubleValueType {
		return 0, fmt.Errorf("expected value type 'dbl'")
	}
	return val.V.(float64), nil
}

// FormatDouble formats f in the shortest representation that round-trips.
func FormatDouble(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// StringOption returns the string option stored under key in opts, or def
// if there is none.  A non-string option is an error.
func StringOption(opts map[string]*V, key, def string) (string, error) {
	val, ok := opts[key]
	if !ok {
		return def, nil
	}
	ret, err := ExpectStringValue(val)
	if err != nil {
		return "", fmt.Errorf("option '%s': %w", key, err)
	}
	return ret, nil
}

// PropertyUpdate updates a provided datumBuilder.  A nil PropertyUpdate does
// nothing.
type PropertyUpdate func(db *datumBuilder) error

// Value specifies a property value whose key is not yet known.
type Value func(key string) PropertyUpdate

// EmptyUpdate is a PropertyUpdate that does nothing.
var EmptyUpdate PropertyUpdate = nil

// ErrorProperty injects an error into the response under construction.
func ErrorProperty(err error) PropertyUpdate {
	return func(db *datumBuilder) error {
		return err
	}
}

// datumBuilder assembles a single Datum.
type datumBuilder struct {
	errs      *buildErrors
	st        *stringTable
	valsByKey map[int64]*V
	d         *Datum
}

func newDatumBuilder(errs *buildErrors, st *stringTable) *datumBuilder {
	valsByKey := map[int64]*V{}
	return &datumBuilder{
		errs:      errs,
		st:        st,
		valsByKey: valsByKey,
		d: &Datum{
			Properties: valsByKey,
			Children:   []*Datum{},
		},
	}
}

// With applies the provided updates in order.  Once any update fails, the
// whole response is failed and further updates are ignored.
func (db *datumBuilder) With(updates ...PropertyUpdate) DataBuilder {
	if db.errs.failed() {
		return db
	}
	for _, update := range updates {
		if update == nil {
			continue
		}
		if err := update(db); err != nil {
			db.errs.add(err)
			break
		}
	}
	return db
}

func (db *datumBuilder) Child() DataBuilder {
	child := newDatumBuilder(db.errs, db.st)
	db.d.Children = append(db.d.Children, child.d)
	return child
}

func (db *datumBuilder) withStr(key, value string) *datumBuilder {
	db.valsByKey[db.st.stringIndex(key)] = StringIndexValue(db.st.stringIndex(value))
	return db
}

func (db *datumBuilder) withStrs(key string, values ...string) *datumBuilder {
	valIdxs := make([]int64, 0, len(values))
	for _, val := range values {
		valIdxs = append(valIdxs, db.st.stringIndex(val))
	}
	db.valsByKey[db.st.stringIndex(key)] = StringIndicesValue(valIdxs...)
	return db
}

// appendStrs extends the string-list property under key, creating it if
// necessary.
func (db *datumBuilder) appendStrs(key string, values ...string) *datumBuilder {
	val, ok := db.valsByKey[db.st.stringIndex(key)]
	if !ok {
		return db.withStrs(key, values...)
	}
	strIdxs, err := expectStringIndicesValue(val)
	if err != nil {
		db.errs.add(err)
		return db
	}
	for _, v := range values {
		strIdxs = append(strIdxs, db.st.stringIndex(v))
	}
	val.V = strIdxs
	return db
}

func (db *datumBuilder) withInt(key string, value int64) *datumBuilder {
	db.valsByKey[db.st.stringIndex(key)] = IntegerValue(value)
	return db
}

func (db *datumBuilder) withInts(key string, values ...int64) *datumBuilder {
	db.valsByKey[db.st.stringIndex(key)] = IntegersValue(values...)
	return db
}

func (db *datumBuilder) withDbl(key string, value float64) *datumBuilder {
	db.valsByKey[db.st.stringIndex(key)] = DoubleValue(value)
	return db
}

func (db *datumBuilder) withDbls(key string, values ...float64) *datumBuilder {
	db.valsByKey[db.st.stringIndex(key)] = DoublesValue(values...)
	return db
}

// If applies the provided PropertyUpdate if the provided predicate is true.
func If(predicate bool, du PropertyUpdate) PropertyUpdate {
	if predicate {
		return du
	}
	return EmptyUpdate
}

// IfElse applies ifTrue if the provided predicate is true, and ifFalse
// otherwise.
func IfElse(predicate bool, ifTrue, ifFalse PropertyUpdate) PropertyUpdate {
	if predicate {
		return ifTrue
	}
	return ifFalse
}

// Chain applies the provided updates in order.
func Chain(updates ...PropertyUpdate) PropertyUpdate {
	return func(db *datumBuilder) error {
		db.With(updates...)
		return nil
	}
}

// Nothing is the Value equivalent of EmptyUpdate.
var Nothing Value = func(key string) PropertyUpdate {
	return EmptyUpdate
}

// Error produces a Value that fails the response with err.
func Error(err error) Value {
	return func(key string) PropertyUpdate {
		return ErrorProperty(fmt.Errorf("%s: %w", key, err))
	}
}

// String produces a Value setting the specified string value.
func String(value string) Value {
	return func(key string) PropertyUpdate {
		return StringProperty(key, value)
	}
}

// Strings produces a Value setting the specified []string value.
func Strings(values ...string) Value {
	return func(key string) PropertyUpdate {
		return StringsProperty(key, values...)
	}
}

// Integer produces a Value setting the specified int64 value.
func Integer(value int64) Value {
	return func(key string) PropertyUpdate {
		return IntegerProperty(key, value)
	}
}

// Double produces a Value setting the specified float64 value.
func Double(value float64) Value {
	return func(key string) PropertyUpdate {
		return DoubleProperty(key, value)
	}
}

// StringProperty returns a PropertyUpdate adding the specified string property.
func StringProperty(key, value string) PropertyUpdate {
	return func(db *datumBuilder) error {
		db.withStr(key, value)
		return nil
	}
}

// StringsProperty returns a PropertyUpdate adding the specified string slice
// property.
func StringsProperty(key string, values ...string) PropertyUpdate {
	return func(db *datumBuilder) error {
		db.withStrs(key, values...)
		return nil
	}
}

// StringsPropertyExtended returns a PropertyUpdate extending the specified
// string slice property.
func StringsPropertyExtended(key string, values ...string) PropertyUpdate {
	return func(db *datumBuilder) error {
		db.appendStrs(key, values...)
		return nil
	}
}

// IntegerProperty returns a PropertyUpdate adding the specified integer property.
func IntegerProperty(key string, value int64) PropertyUpdate {
	return func(db *datumBuilder) error {
		db.withInt(key, value)
		return nil
	}
}

// IntegersProperty returns a PropertyUpdate adding the specified integer slice
// property.
func IntegersProperty(key string, values ...int64) PropertyUpdate {
	return func(db *datumBuilder) error {
		db.withInts(key, values...)
		return nil
	}
}

// DoubleProperty returns a PropertyUpdate adding the specified double property.
func DoubleProperty(key string, value float64) PropertyUpdate {
	return func(db *datumBuilder) error {
		db.withDbl(key, value)
		return nil
	}
}

// DoublesProperty returns a PropertyUpdate adding the specified double slice
// property.
func DoublesProperty(key string, values ...float64) PropertyUpdate {
	return func(db *datumBuilder) error {
		db.withDbls(key, values...)
		return nil
	}
}
