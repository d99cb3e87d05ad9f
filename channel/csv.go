package channel

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// csvColumns is the fixed column order for the delimited-text channel list.
var csvColumns = []string{
	"index", "empty", "rx_mhz", "tx_offset_mhz", "duplex",
	"tone_mode", "rtone_hz", "ctone_hz", "dtcs_tx", "dtcs_rx", "dtcs_polarity", "cross_mode",
	"mode", "tuning_step_khz", "skip", "power", "name", "comment",
}

// WriteCSV writes the channel list as a header row followed by one row per
// channel, in the fixed column order above.
func WriteCSV(w io.Writer, arr *Array) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvColumns); err != nil {
		return err
	}
	for _, ch := range arr.All() {
		row := []string{
			strconv.Itoa(ch.Index),
			strconv.FormatBool(ch.Empty),
			formatMHz(ch.RxHz),
			formatMHz(ch.TxOffsetHz),
			ch.Duplex.String(),
			ch.ToneMode.String(),
			formatTenths(ch.RtoneDHz),
			formatTenths(ch.CtoneDHz),
			strconv.Itoa(ch.DTCSTx),
			strconv.Itoa(ch.DTCSRx),
			ch.DTCSPolarity,
			ch.CrossMode.String(),
			ch.Mode.String(),
			strconv.FormatFloat(ch.TuningStepKHz, 'f', 2, 64),
			ch.Skip.String(),
			ch.Power,
			ch.Name,
			ch.Comment,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a channel list previously written by WriteCSV back into an
// Array bounded to the row count present. Input with no data rows yields an
// Array holding a single empty slot.
func ReadCSV(r io.Reader) (*Array, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvColumns)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return NewArray(1, 1), nil
	}
	rows := records[1:] // skip header
	if len(rows) == 0 {
		return NewArray(1, 1), nil
	}
	arr := NewArray(1, len(rows))
	for i, row := range rows {
		ch, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		if err := arr.Set(i+1, ch); err != nil {
			return nil, err
		}
	}
	return arr, nil
}

func parseRow(row []string) (Channel, error) {
	empty, err := strconv.ParseBool(row[1])
	if err != nil {
		return Channel{}, err
	}
	rxHz, err := parseMHz(row[2])
	if err != nil {
		return Channel{}, err
	}
	txOffHz, err := parseMHz(row[3])
	if err != nil {
		return Channel{}, err
	}
	step, err := strconv.ParseFloat(row[13], 64)
	if err != nil {
		return Channel{}, err
	}
	dtcsTx, _ := strconv.Atoi(row[8])
	dtcsRx, _ := strconv.Atoi(row[9])
	return Channel{
		Empty:         empty,
		RxHz:          rxHz,
		TxOffsetHz:    txOffHz,
		Duplex:        duplexFromString(row[4]),
		ToneMode:      toneModeFromString(row[5]),
		RtoneDHz:      parseTenths(row[6]),
		CtoneDHz:      parseTenths(row[7]),
		DTCSTx:        dtcsTx,
		DTCSRx:        dtcsRx,
		DTCSPolarity:  row[10],
		CrossMode:     crossModeFromString(row[11]),
		Mode:          ModeFromString(row[12]),
		TuningStepKHz: step,
		Skip:          SkipFromString(row[14]),
		Power:         row[15],
		Name:          row[16],
		Comment:       row[17],
	}, nil
}

func formatMHz(hz int64) string {
	return strconv.FormatFloat(float64(hz)/1e6, 'f', 6, 64)
}

func parseMHz(s string) (int64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int64(f*1e6 + 0.5), nil
}

func formatTenths(dHz int) string {
	return strconv.FormatFloat(float64(dHz)/10, 'f', 1, 64)
}

func parseTenths(s string) int {
	f, _ := strconv.ParseFloat(s, 64)
	return int(f*10 + 0.5)
}

func duplexFromString(s string) Duplex {
	switch s {
	case "plus":
		return DuplexPlus
	case "minus":
		return DuplexMinus
	case "split":
		return DuplexSplit
	case "off":
		return DuplexOff
	default:
		return DuplexNone
	}
}

func toneModeFromString(s string) ToneMode {
	switch s {
	case "tx_ctcss":
		return ToneTXCTCSS
	case "ctcss_both":
		return ToneCTCSSBoth
	case "dtcs":
		return ToneDTCS
	case "dtcs_reverse":
		return ToneDTCSReverse
	case "tsql_reverse":
		return ToneTSQLReverse
	case "cross":
		return ToneCross
	default:
		return ToneNone
	}
}

func crossModeFromString(s string) CrossMode {
	for i := CrossToneToTone; i <= CrossToneToNone; i++ {
		if i.String() == s {
			return i
		}
	}
	return CrossToneToTone
}
