package decoder

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/txengine/internal/domain"
)

// column names of the optional header row
var headerColumns = []string{"type", "client", "tx", "amount"}

const minFields = 3

func lineTooLong(limit int) error {
	return errors.Wrapf(ErrLineTooLong, "exceeds %d bytes", limit)
}

// decodeLine decodes one terminated line and appends its result, if any, to out.
// Blank lines and a valid header produce no result.
func (d *Decoder) decodeLine(raw []byte, out []Result) []Result {
	text := strings.TrimSuffix(string(raw), "\r")
	if strings.TrimSpace(text) == "" {
		return out
	}

	if d.opts.MaxLineWidth > 0 && len(text) > d.opts.MaxLineWidth {
		return append(out, Result{Err: newDecodeError(d.line, text, lineTooLong(d.opts.MaxLineWidth))})
	}

	fields := strings.Split(text, string(d.opts.Delimiter))
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	if !d.headerChecked {
		d.headerChecked = true
		if strings.EqualFold(fields[0], headerColumns[0]) {
			if err := d.checkHeader(fields); err != nil {
				return append(out, Result{Err: newDecodeError(d.line, text, err)})
			}
			return out
		}
	}

	record, err := d.parseRecord(fields)
	if err != nil {
		return append(out, Result{Err: newDecodeError(d.line, text, err)})
	}
	return append(out, Result{Record: record})
}

func (d *Decoder) checkHeader(fields []string) error {
	if len(fields) < minFields {
		return errors.Wrapf(ErrBadHeader, "expected at least %d columns, got %d", minFields, len(fields))
	}

	for i, name := range fields {
		if i >= len(headerColumns) {
			if name != "" && d.opts.StrictSchema {
				return errors.Wrapf(ErrBadHeader, "unexpected column %q", name)
			}
			continue
		}
		if !strings.EqualFold(name, headerColumns[i]) {
			return errors.Wrapf(ErrBadHeader, "column %d is %q, expected %q", i+1, name, headerColumns[i])
		}
	}

	return nil
}

func (d *Decoder) parseRecord(fields []string) (domain.Transaction, error) {
	if len(fields) < minFields {
		return nil, errors.Wrapf(ErrMissingField, "expected at least %d fields, got %d", minFields, len(fields))
	}

	kindText, clientText, txText := fields[0], fields[1], fields[2]
	if kindText == "" {
		return nil, errors.Wrap(ErrMissingField, "type")
	}
	kind, err := domain.ParseKind(kindText)
	if err != nil {
		return nil, err
	}

	if clientText == "" {
		return nil, errors.Wrap(ErrMissingField, "client")
	}
	client, err := strconv.ParseUint(clientText, 10, 16)
	if err != nil {
		return nil, errors.Wrapf(ErrBadNumber, "client %q", clientText)
	}

	if txText == "" {
		return nil, errors.Wrap(ErrMissingField, "tx")
	}
	tx, err := strconv.ParseUint(txText, 10, 32)
	if err != nil {
		return nil, errors.Wrapf(ErrBadNumber, "tx %q", txText)
	}

	amountText := ""
	if len(fields) > minFields {
		amountText = fields[minFields]
	}

	if d.opts.StrictSchema {
		for _, extra := range fields[min(len(fields), minFields+1):] {
			if extra != "" {
				return nil, errors.Wrapf(ErrExtraField, "%q", extra)
			}
		}
	}

	amount := domain.ZeroAmount()
	if kind.HasAmount() {
		if amountText == "" {
			return nil, errors.Wrapf(ErrMissingField, "amount for %s", kind)
		}
		// row amounts are unsigned
		if amountText[0] == '+' || amountText[0] == '-' {
			return nil, errors.Wrapf(ErrBadNumber, "signed amount %q", amountText)
		}
		amount, err = domain.ParseAmountLimit(amountText, d.opts.MaxIntegerDigits)
		if err != nil {
			return nil, errors.Wrapf(ErrBadNumber, "amount %q", amountText)
		}
	} else if amountText != "" && d.opts.StrictSchema {
		return nil, errors.Wrapf(ErrExtraField, "amount not allowed for %s", kind)
	}

	return domain.NewTransaction(kind, domain.ClientID(client), domain.TxID(tx), amount)
}
