package faultrate

import (
	"bufio"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strconv"
	"strings"
)

// fit converts a FaultRateInfo.cc literal coefficient (written "x.xxxE-xx
// FIT" in the original, where the FIT macro is *1e-9) into an absolute
// failure-in-time rate.
const fit = 1e-9

// Info is FaultRateInfo: an ordered (name, rate) list with a running total,
// supporting weighted random draw and a simplified-naming mode that folds
// every DRAM-internal fault variant down to its taxonomy kind (spec 4.E).
type Info struct {
	rates         []rateRecord
	totalRate     float64
	detailedError bool
	Inherent      *InherentRate
}

type rateRecord struct {
	name string
	rate float64
}

// New builds an empty Info. detailedError controls whether AddRate keeps
// each fault's exact name or folds it to its simplified taxonomy name via
// simplifyName (FaultRateInfo::convertToSimpleError).
func New(detailedError bool) *Info {
	return &Info{detailedError: detailedError, Inherent: NewInherentRate()}
}

// NewFromModule builds an Info pre-populated with one of the four builtin
// Tianchi module profiles (DefaultFaultRateInfo, module == 0..3). hbmSetup
// suppresses the multi_rank/multi_rank_random_bits tail the original only
// adds for non-HBM setups.
func NewFromModule(module int, m Multipliers, hbmSetup, detailedError bool) (*Info, error) {
	profile := moduleProfile(module)
	if profile == nil {
		return nil, fmt.Errorf("faultrate: no builtin profile for module %d (valid: 0-3)", module)
	}
	info := New(detailedError)
	for _, e := range profile {
		info.AddRate(e.name, e.fit*multiplierFor(e.name, m)*fit)
	}
	if !hbmSetup {
		for _, e := range multiRankTail[module] {
			info.AddRate(e.name, e.fit*fit)
		}
	}
	return info, nil
}

// LoadFromFile builds an Info from a module==4 style input file: each line
// is `"fault_name",fitValue`, mirroring DefaultFaultRateInfo's CSV parse of
// input_FIT.conf. Malformed lines are skipped with an error logged to the
// returned slice rather than aborting the whole file, matching the
// original's per-line std::cerr diagnostics.
func LoadFromFile(path string, m Multipliers, detailedError bool) (*Info, []error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("faultrate: opening %s: %w", path, err)
	}
	defer f.Close()

	info := New(detailedError)
	var lineErrors []error
	scanner := bufio.NewScanner(f)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := scanner.Text()
		comma := strings.IndexByte(line, ',')
		if comma < 0 {
			lineErrors = append(lineErrors, fmt.Errorf("line %d: malformed input data", lineNumber))
			continue
		}
		name := strings.TrimSpace(line[:comma])
		valueStr := strings.TrimSpace(line[comma+1:])

		if len(name) < 2 || name[0] != '"' || name[len(name)-1] != '"' {
			lineErrors = append(lineErrors, fmt.Errorf("line %d: invalid fault name format", lineNumber))
			continue
		}
		name = name[1 : len(name)-1]

		value, err := strconv.ParseFloat(valueStr, 64)
		if err != nil {
			lineErrors = append(lineErrors, fmt.Errorf("line %d: malformed input data", lineNumber))
			continue
		}
		if value < 0 {
			lineErrors = append(lineErrors, fmt.Errorf("line %d: negative fault value detected", lineNumber))
			continue
		}

		info.AddRate(name, value*multiplierFor(name, m)*fit)
	}
	if err := scanner.Err(); err != nil {
		return nil, lineErrors, fmt.Errorf("faultrate: reading %s: %w", path, err)
	}
	return info, lineErrors, nil
}

// simplifyName folds a detailed fault-kind name to its taxonomy-level name
// (FaultRateInfo::convertToSimpleError): the original strips the trailing
// "-t"/"-p" suffix, maps the remaining prefix through a fixed table, and
// reattaches the suffix.
func simplifyName(name string) string {
	if name == "inherent" {
		return name
	}
	if len(name) < 2 {
		return name
	}
	prefix, suffix := name[:len(name)-2], name[len(name)-2:]

	switch {
	case prefix == "bank_control_bank_8diff" || prefix == "bank_control_manybanks" ||
		prefix == "bank_control_two_banks_not8diff" || prefix == "bank_control":
		prefix = "mbank"
	case prefix == "single_sense_amp" || prefix == "potential_sense_amp":
		prefix = "scol"
	case prefix == "decoder_multi_col":
		prefix = "sbank"
	case prefix == "decoder_single_col":
		prefix = "scol"
	case prefix == "single_csl_bank":
		prefix = "sbank"
	case prefix == "single_csl_column" || prefix == "potential_csl_column":
		prefix = "scol"
	case prefix == "multi_rank" || prefix == "multi_rank_random_bits" ||
		prefix == "multi_socket" || prefix == "multi_socket_could_justone" ||
		prefix == "multi_socket_true_socket":
		prefix = "mrank"
	case prefix == "not_clustered_multi_bank":
		prefix = "mbank"
	case prefix == "not_clustered_single_bank" || prefix == "mutli_csls_column_and_bank" ||
		prefix == "mutli_csls_random_bank_row" || prefix == "mutli_csls_random_bits" ||
		prefix == "mutli_csls":
		prefix = "sbank"
	case prefix == "not_clustered_single_column":
		prefix = "scol"
	case prefix == "lwl_sel" || prefix == "lwl_sel2" || prefix == "mutli_csls_row_and_bits" ||
		prefix == "mutli_csls_row_related" || prefix == "row_decoder" ||
		prefix == "lwl_sel_column_related" || prefix == "lwl_sel2_potential_col":
		prefix = "sbank"
	case strings.Contains(prefix, "multiple_single_bit_failures"):
		prefix = "sbit"
	case prefix == "local_wordline" || prefix == "consequtive_rows":
		prefix = "srow"
	case prefix == "local_wordline_two_clusters" || prefix == "subarray_row_decoder_two_clusters" ||
		prefix == "lwl_sel_random_bit":
		prefix = "sbank"
	case prefix == "subarray_row_decoder":
		prefix = "sbank"
	}
	return prefix + suffix
}

// AddRate appends a (name, rate) pair, folding the name through
// simplifyName first when detailedError is false.
func (info *Info) AddRate(name string, rate float64) {
	if !info.detailedError {
		name = simplifyName(name)
	}
	info.rates = append(info.rates, rateRecord{name: name, rate: rate})
	info.totalRate += rate
}

// RemoveLastRate drops the most recently added entry (FaultRateInfo's
// removeLastRate, used when a scenario needs to retract its own injected
// rate after the fact).
func (info *Info) RemoveLastRate() {
	if len(info.rates) == 0 {
		return
	}
	last := info.rates[len(info.rates)-1]
	info.totalRate -= last.rate
	info.rates = info.rates[:len(info.rates)-1]
}

// TotalRate returns the fixed baseline rate FaultRateInfo::getTotalRate
// returns under FIXED_FITRATE: 9.38e-8 (the measured combined error rate),
// plus whatever "inherent" entry is currently appended, if any.
func (info *Info) TotalRate() float64 {
	const fixedBaseline = 9.38e-8
	if len(info.rates) > 0 && info.rates[len(info.rates)-1].name == "inherent" {
		return fixedBaseline + info.rates[len(info.rates)-1].rate
	}
	return fixedBaseline
}

// PickRandomType draws a fault-kind name proportional to its rate
// (FaultRateInfo::pickRandomType).
func (info *Info) PickRandomType(rng *rand.Rand) (string, float64, error) {
	if len(info.rates) == 0 {
		return "", 0, fmt.Errorf("faultrate: pickRandomType on empty rate table")
	}
	draw := rng.Float64() * info.totalRate
	sum := 0.0
	for _, r := range info.rates {
		sum += r.rate
		if sum >= draw {
			return r.name, r.rate, nil
		}
	}
	last := info.rates[len(info.rates)-1]
	return last.name, last.rate, nil
}

// overlapExponents are the per-kind-name cacheline-overlap exponents
// FaultRateInfo::overlap_prob hardcodes (number of weak-cell "slots" a
// fault of that kind spans), keyed by the taxonomy name overlap_prob
// switches on (capitalized, matching the original's literal string
// comparisons).
var overlapExponents = map[string]int{
	"Sbit": 1, "Sword": 1, "Scol": 128 * 1024, "Srow": 128, "Lwordline": 128,
	"Sbank": 128 * 128 * 1024, "Mbank": 16 * 128 * 128 * 1024,
	"BLSA": 2 * 1024, "Bank_pattern": 2 * 128 * 1024, "CDEC": 2 * 16 * 1024,
	"CSL": 16 * 1024, "RDEC": 128 * 128, "SWD": 2 * 1024, "Dist_bit": 10,
	"CMUX": 2 * 1024, "MWL": 128 * 128,
}

// unconditionalOverlapKinds are the kinds overlap_prob special-cases to
// "certain (1) unless the weak-cell ratio is vanishingly small (<1e-40)".
var unconditionalOverlapKinds = map[string]bool{
	"Mrank": true, "Channel": true, "Multi_module": true,
}

// OverlapProb computes the probability that a fault of the given taxonomy
// name overlaps a cacheline's weak cells, given the current weak-cell ratio
// pWord (FaultRateInfo::overlap_prob).
func (info *Info) OverlapProb(kindName string, pWord float64) (float64, error) {
	if unconditionalOverlapKinds[kindName] {
		if pWord < 1e-40 {
			return 0, nil
		}
		return 1, nil
	}
	exp, ok := overlapExponents[kindName]
	if !ok {
		return 0, fmt.Errorf("faultrate: unknown overlap kind %q", kindName)
	}
	return 1 - math.Pow(1-pWord, float64(exp)), nil
}
