package benchmark

import (
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

//
// Parse builds a Table from the json benchmark source:
//
//	[ {"title": "...", "data": [ {"Percentile": 50, "K": 320, "1": 360, ...}, ... ]}, ... ]
//
func Parse(data []byte, opts ...LoadOption) (*Table, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.Wrap(ErrDataLoad, "source is not valid json")
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, errors.Wrap(ErrDataLoad, "source must be a list of subject tables")
	}

	var (
		blocks []sourceBlock
		perr   error
		idx    int
	)
	root.ForEach(func(_, block gjson.Result) bool {
		b, err := jsonBlock(idx, block)
		idx++
		if err != nil {
			perr = err
			return false
		}
		if len(b.rows) > 0 {
			blocks = append(blocks, b)
		}
		return true
	})
	if perr != nil {
		return nil, perr
	}

	return build(blocks, opts)
}

func jsonBlock(idx int, block gjson.Result) (sourceBlock, error) {
	b := sourceBlock{title: UnknownSubject}
	if !block.IsObject() {
		return b, errors.Wrapf(ErrDataLoad, "block %d is not an object", idx)
	}
	if title := block.Get("title"); title.Exists() && title.Type != gjson.Null {
		b.title = title.String()
	}

	data := block.Get("data")
	if !data.Exists() {
		return b, errors.Wrapf(ErrDataLoad, "block %d (%s) has no data", idx, b.title)
	}
	if data.Type == gjson.Null {
		return b, nil
	}
	if !data.IsArray() {
		return b, errors.Wrapf(ErrDataLoad, "block %d (%s) data is not a list", idx, b.title)
	}

	var rerr error
	data.ForEach(func(_, row gjson.Result) bool {
		if !row.IsObject() {
			rerr = errors.Wrapf(ErrDataLoad, "block %d (%s) row %d is not an object", idx, b.title, len(b.rows))
			return false
		}
		r := sourceRow{}
		row.ForEach(func(key, value gjson.Result) bool {
			cell := jsonCell(value)
			if key.String() == percentileKey {
				r.percentile, r.hasPct = cell, true
				return true
			}
			r.cells = append(r.cells, gradeCell{label: key.String(), value: cell})
			return true
		})
		b.rows = append(b.rows, r)
		return true
	})

	return b, rerr
}

func jsonCell(v gjson.Result) sourceCell {
	switch v.Type {
	case gjson.Null:
		return sourceCell{null: true}
	case gjson.Number:
		return sourceCell{raw: v.Raw}
	case gjson.String:
		return sourceCell{raw: v.Str}
	}
	// true/false, objects and lists are not scores
	return sourceCell{raw: v.Raw}
}
