// Package namevoting implements the name-voting subsystem of the catalog
// context.
//
// The module owns the vote ledger (cast/retract/add-name/remove-name), the
// denormalized per-name weight counters, and canonical-name resolution for
// games. Vote mutations ride a single transactional unit so weights never
// drift from the live vote set; canonical-name recomputation is a follow-up
// step that converges because resolution is a pure function of the current
// weights. Business rules live in application/domain layers and
// infrastructure concerns stay behind ports and adapters.
package namevoting
