// Package erd builds the entity-relationship multigraph from normalized
// entities.
//
// Every entity becomes a [Node] sized by its attribute count. Every node
// carries an identity port plus one [Port] per attribute; ports are kept in a
// [PortIndex] keyed by (node, attribute) and expose an inbound and an
// outbound [Anchor]. Every relation attribute whose target is present becomes
// one [Edge] from the attribute's port to the inverse attribute's port on the
// target, or to the target's identity port.
//
// Parallel edges between the same pair of entities are kept apart by ID.
package erd
