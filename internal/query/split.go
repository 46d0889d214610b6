package query

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"
	"github.com/vektah/gqlparser/v2/parser"
)

// rootUnit is one root selection of an operation, printed as a standalone
// document carrying only the fragments and variables it uses.
type rootUnit struct {
	// key is the response key, empty for a fragment spread or inline
	// fragment at the root.
	key      string
	document string
}

// splitRoots cuts the selected operation of query into one document per root
// selection so each can be validated and executed on its own.
func splitRoots(query, operationName string) ([]rootUnit, error) {
	doc, parseErr := parser.ParseQuery(&ast.Source{Input: query})
	if parseErr != nil {
		return nil, fmt.Errorf("failed to parse query document: %w", parseErr)
	}

	op, err := pickOperation(doc, operationName)
	if err != nil {
		return nil, err
	}

	units := make([]rootUnit, 0, len(op.SelectionSet))
	for _, sel := range op.SelectionSet {
		usage := newUsage(doc)
		usage.directives(op.Directives)
		usage.selections(ast.SelectionSet{sel})

		single := &ast.OperationDefinition{
			Operation:    op.Operation,
			Name:         op.Name,
			Directives:   op.Directives,
			SelectionSet: ast.SelectionSet{sel},
		}
		for _, def := range op.VariableDefinitions {
			if usage.variables[def.Variable] {
				single.VariableDefinitions = append(single.VariableDefinitions, def)
			}
		}

		part := &ast.QueryDocument{Operations: ast.OperationList{single}}
		for _, frag := range doc.Fragments {
			if usage.fragments[frag.Name] {
				part.Fragments = append(part.Fragments, frag)
			}
		}

		var buf bytes.Buffer
		formatter.NewFormatter(&buf).FormatQueryDocument(part)
		units = append(units, rootUnit{key: responseKey(sel), document: buf.String()})
	}
	return units, nil
}

func pickOperation(doc *ast.QueryDocument, name string) (*ast.OperationDefinition, error) {
	if name != "" {
		op := doc.Operations.ForName(name)
		if op == nil {
			return nil, fmt.Errorf("unknown operation %q", name)
		}
		return op, nil
	}
	if len(doc.Operations) != 1 {
		return nil, errors.New("operationName is required when the document has several operations")
	}
	return doc.Operations[0], nil
}

func responseKey(sel ast.Selection) string {
	if field, ok := sel.(*ast.Field); ok {
		if field.Alias != "" {
			return field.Alias
		}
		return field.Name
	}
	return ""
}

// usage records the fragments and variables a selection reaches.
type usage struct {
	doc       *ast.QueryDocument
	fragments map[string]bool
	variables map[string]bool
}

func newUsage(doc *ast.QueryDocument) *usage {
	return &usage{
		doc:       doc,
		fragments: map[string]bool{},
		variables: map[string]bool{},
	}
}

func (u *usage) selections(set ast.SelectionSet) {
	for _, sel := range set {
		switch s := sel.(type) {
		case *ast.Field:
			u.arguments(s.Arguments)
			u.directives(s.Directives)
			u.selections(s.SelectionSet)
		case *ast.InlineFragment:
			u.directives(s.Directives)
			u.selections(s.SelectionSet)
		case *ast.FragmentSpread:
			u.directives(s.Directives)
			if u.fragments[s.Name] {
				continue
			}
			u.fragments[s.Name] = true
			if def := u.doc.Fragments.ForName(s.Name); def != nil {
				u.directives(def.Directives)
				u.selections(def.SelectionSet)
			}
		}
	}
}

func (u *usage) directives(list ast.DirectiveList) {
	for _, d := range list {
		u.arguments(d.Arguments)
	}
}

func (u *usage) arguments(list ast.ArgumentList) {
	for _, arg := range list {
		u.value(arg.Value)
	}
}

func (u *usage) value(v *ast.Value) {
	if v == nil {
		return
	}
	if v.Kind == ast.Variable {
		u.variables[v.Raw] = true
	}
	for _, child := range v.Children {
		u.value(child.Value)
	}
}
