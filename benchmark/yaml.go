package benchmark

import (
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//
// ParseYAML builds a Table from a yaml document of the same
// shape as the json source.
//
func ParseYAML(data []byte, opts ...LoadOption) (*Table, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(ErrDataLoad, "source is not valid yaml: %s", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, errors.Wrap(ErrDataLoad, "source is empty")
	}
	root := doc.Content[0]
	if root.Kind != yaml.SequenceNode {
		return nil, errors.Wrap(ErrDataLoad, "source must be a list of subject tables")
	}

	var blocks []sourceBlock
	for i, n := range root.Content {
		b, err := yamlBlock(i, n)
		if err != nil {
			return nil, err
		}
		if len(b.rows) > 0 {
			blocks = append(blocks, b)
		}
	}

	return build(blocks, opts)
}

func yamlBlock(idx int, n *yaml.Node) (sourceBlock, error) {
	b := sourceBlock{title: UnknownSubject}
	if n.Kind != yaml.MappingNode {
		return b, errors.Wrapf(ErrDataLoad, "block %d is not a mapping", idx)
	}

	var data *yaml.Node
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		switch k.Value {
		case "title":
			if !isNull(v) {
				b.title = v.Value
			}
		case "data":
			data = v
		}
	}
	if data == nil {
		return b, errors.Wrapf(ErrDataLoad, "block %d (%s) has no data", idx, b.title)
	}
	if isNull(data) {
		return b, nil
	}
	if data.Kind != yaml.SequenceNode {
		return b, errors.Wrapf(ErrDataLoad, "block %d (%s) data is not a list", idx, b.title)
	}

	for ri, row := range data.Content {
		if row.Kind != yaml.MappingNode {
			return b, errors.Wrapf(ErrDataLoad, "block %d (%s) row %d is not a mapping", idx, b.title, ri)
		}
		r := sourceRow{}
		for i := 0; i+1 < len(row.Content); i += 2 {
			k, v := row.Content[i], row.Content[i+1]
			cell := yamlCell(v)
			if k.Value == percentileKey {
				r.percentile, r.hasPct = cell, true
				continue
			}
			r.cells = append(r.cells, gradeCell{label: k.Value, value: cell})
		}
		b.rows = append(b.rows, r)
	}

	return b, nil
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null"
}

func yamlCell(v *yaml.Node) sourceCell {
	if isNull(v) {
		return sourceCell{null: true}
	}
	if v.Kind != yaml.ScalarNode {
		return sourceCell{raw: "<" + v.ShortTag() + ">"}
	}
	return sourceCell{raw: v.Value}
}
