package analyzer

import (
	"fmt"

	"github.com/example/cheatgen/internal/core/naming"
	"github.com/example/cheatgen/internal/core/schema"
)

// Options controls optional derivations.
type Options struct {
	AssociationProxies bool
}

// Analyze derives the model for every table in registry order. Within a
// table, entries follow edge creation order, so the result is stable for an
// unchanged registry.
func Analyze(reg *schema.Registry, opts Options) Model {
	tables := reg.Tables()
	edges := reg.Edges()

	names := make(map[int]string, len(tables))
	for _, t := range tables {
		names[t.ID] = t.Name
	}

	var model Model
	seenJunction := make(map[string]bool)

	for _, t := range tables {
		at := Table{
			ID:        t.ID,
			Name:      t.Name,
			ClassName: naming.ClassName(t.Name),
			Plural:    t.PluralName(),
			Fields:    t.UserFields(),
		}

		// Tables that own this one: FK here, belongs_to back to the owner.
		for _, e := range edges {
			if e.Target != t.ID || !e.Kind.OwnsForeignKey() {
				continue
			}
			owner := names[e.Owner]
			at.ForeignKeys = append(at.ForeignKeys, ForeignKey{
				Name:       naming.ForeignKeyName(owner),
				Owner:      owner,
				References: naming.Pluralize(owner),
				Nullable:   e.Nullable,
				Unique:     e.Unique,
			})
			back := at.Plural
			if e.Kind == schema.HasOne {
				back = t.Name
			}
			at.Relationships = append(at.Relationships, Relationship{
				Type:          BelongsTo,
				Target:        owner,
				TargetClass:   naming.ClassName(owner),
				Name:          owner,
				BackPopulates: back,
			})
		}

		for _, e := range edges {
			if e.Owner == t.ID && e.Kind == schema.HasOne {
				target := names[e.Target]
				at.Relationships = append(at.Relationships, Relationship{
					Type:          HasOne,
					Target:        target,
					TargetClass:   naming.ClassName(target),
					Name:          target,
					BackPopulates: t.Name,
				})
			}
		}

		var proxies []Proxy
		for _, e := range edges {
			if e.Owner != t.ID || e.Kind != schema.HasMany {
				continue
			}
			target := names[e.Target]
			through := naming.Pluralize(target)
			at.Relationships = append(at.Relationships, Relationship{
				Type:          HasMany,
				Target:        target,
				TargetClass:   naming.ClassName(target),
				Name:          through,
				BackPopulates: t.Name,
			})
			if opts.AssociationProxies {
				proxies = append(proxies, proxiesThrough(edges, names, t.ID, e.Target, through)...)
			}
		}

		for _, e := range edges {
			if e.Kind != schema.ManyToMany || (e.Owner != t.ID && e.Target != t.ID) {
				continue
			}
			otherID := e.Target
			if otherID == t.ID {
				otherID = e.Owner
			}
			other := names[otherID]
			junction := naming.JunctionName(t.Name, other)
			at.Relationships = append(at.Relationships, Relationship{
				Type:          ManyToMany,
				Target:        other,
				TargetClass:   naming.ClassName(other),
				Name:          naming.Pluralize(other),
				BackPopulates: at.Plural,
				JunctionTable: junction,
			})
			if !seenJunction[junction] {
				seenJunction[junction] = true
				left, right := t.Name, other
				if right < left {
					left, right = right, left
				}
				model.Junctions = append(model.Junctions, Junction{Name: junction, Left: left, Right: right})
			}
		}

		at.Proxies = disambiguate(proxies, at.Relationships)
		model.Tables = append(model.Tables, at)
	}

	return model
}

// proxiesThrough finds every third table that also owns target and exposes
// it on tableID through the has_many attribute named through.
func proxiesThrough(edges []schema.Edge, names map[int]string, tableID, targetID int, through string) []Proxy {
	var proxies []Proxy
	for _, e := range edges {
		if e.Target != targetID || !e.Kind.OwnsForeignKey() || e.Owner == tableID {
			continue
		}
		other := names[e.Owner]
		proxies = append(proxies, Proxy{
			Name:        naming.Pluralize(other),
			Through:     through,
			TargetAttr:  other,
			TargetClass: naming.ClassName(other),
		})
	}
	return proxies
}

// disambiguate renames proxies that collide with a relationship attribute or
// an earlier proxy by appending _proxy, _proxy2, _proxy3 and so on.
func disambiguate(proxies []Proxy, rels []Relationship) []Proxy {
	if len(proxies) == 0 {
		return nil
	}
	taken := make(map[string]bool, len(rels)+len(proxies))
	for _, r := range rels {
		taken[r.Name] = true
	}
	out := make([]Proxy, 0, len(proxies))
	for _, p := range proxies {
		name := p.Name
		for n := 1; taken[name]; n++ {
			if n == 1 {
				name = p.Name + "_proxy"
			} else {
				name = fmt.Sprintf("%s_proxy%d", p.Name, n)
			}
		}
		taken[name] = true
		p.Name = name
		out = append(out, p)
	}
	return out
}
