// Copyright 2017 Cloudfoam, Inc.
// This software is released under an MIT/X11 open source license.

package postgres

import (
	"database/sql"

	"github.com/lib/pq"
	"github.com/ugorji/go/codec"

	"github.com/cloudfoam/go-occi/occi"
)

var jsonHandle = &codec.JsonHandle{}

func init() {
	jsonHandle.Canonical = true
}

// entityRow is the stored shape of an entity.  Attribute values are
// kept in their canonical wire form, so rehydration runs them back
// through the schema the same way a decoded request would.
type entityRow struct {
	id     string
	kind   string
	mixins []string
	source sql.NullString
	target sql.NullString
	attrs  string
}

func rowFromEntity(ent occi.Entity) (*entityRow, error) {
	row := &entityRow{
		id:     ent.ID(),
		kind:   ent.Kind().ID.String(),
		mixins: []string{},
	}
	for _, id := range ent.MixinIDs() {
		row.mixins = append(row.mixins, id.String())
	}
	if link, isLink := ent.(*occi.Link); isLink {
		row.source = sql.NullString{String: link.Source(), Valid: true}
		row.target = sql.NullString{String: link.Target(), Valid: true}
	}

	schema, err := ent.Registry().EffectiveAttributes(ent.Kind().ID, ent.MixinIDs())
	if err != nil {
		return nil, err
	}
	attrs := make(map[string]string)
	for name, value := range ent.Attributes() {
		def, declared := schema[name]
		if !declared {
			return nil, occi.ErrUnknownAttribute{Name: name}
		}
		attrs[name] = def.Type.Format(value)
	}
	var encoded []byte
	if err := codec.NewEncoderBytes(&encoded, jsonHandle).Encode(attrs); err != nil {
		return nil, occi.ErrBackendFailure{Err: err}
	}
	row.attrs = string(encoded)
	return row, nil
}

func (r *entityRow) scan(rows *sql.Rows) error {
	return rows.Scan(&r.id, &r.kind, pq.Array(&r.mixins),
		&r.source, &r.target, &r.attrs)
}

func (r *entityRow) toEntity(reg *occi.Registry) (occi.Entity, error) {
	kindID, err := occi.ParseCategoryID(r.kind)
	if err != nil {
		return nil, err
	}
	kind, err := reg.Kind(kindID)
	if err != nil {
		return nil, err
	}

	var ent occi.Entity
	if kind.IsLink {
		ent, err = occi.NewLink(reg, kindID, r.source.String, r.target.String)
	} else {
		ent, err = occi.NewResource(reg, kindID)
	}
	if err != nil {
		return nil, err
	}
	ent.SetID(r.id)

	for _, raw := range r.mixins {
		mixinID, err := occi.ParseCategoryID(raw)
		if err != nil {
			return nil, err
		}
		if err = ent.AssociateMixin(mixinID); err != nil {
			return nil, err
		}
	}

	attrs := make(map[string]string)
	if r.attrs != "" {
		if err := codec.NewDecoderBytes([]byte(r.attrs), jsonHandle).Decode(&attrs); err != nil {
			return nil, occi.ErrBackendFailure{Err: err}
		}
	}
	for name, value := range attrs {
		if err := ent.SetAttribute(name, value); err != nil {
			return nil, err
		}
	}
	return ent, nil
}

// selectRow loads one entity row by ID.
func (b *pgBackend) selectRow(tx *sql.Tx, id string) (*entityRow, error) {
	row := &entityRow{}
	err := tx.QueryRow(
		"SELECT id, kind, mixins, source, target, attrs FROM entities WHERE id=$1",
		id).Scan(&row.id, &row.kind, pq.Array(&row.mixins),
		&row.source, &row.target, &row.attrs)
	if err == sql.ErrNoRows {
		return nil, occi.ErrNotFound{ID: id}
	}
	if err != nil {
		return nil, occi.ErrBackendFailure{Err: err}
	}
	return row, nil
}

// selectLinks loads the rows of links whose source is id, in ID
// order.
func (b *pgBackend) selectLinks(tx *sql.Tx, id string) ([]*entityRow, error) {
	rows, err := tx.Query(
		"SELECT id, kind, mixins, source, target, attrs "+
			"FROM entities WHERE source=$1 ORDER BY id", id)
	if err != nil {
		return nil, occi.ErrBackendFailure{Err: err}
	}
	var result []*entityRow
	err = scanRows(rows, func() error {
		row := &entityRow{}
		if err := row.scan(rows); err != nil {
			return occi.ErrBackendFailure{Err: err}
		}
		result = append(result, row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
