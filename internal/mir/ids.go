package mir

// BlockID indexes a basic block within one function.
type BlockID uint32

// NoBlockID marks an unset block reference.
const NoBlockID = BlockID(^uint32(0))

// ValueID names one instruction result within a function.
type ValueID uint32

// NoValueID marks instructions that produce no value.
const NoValueID ValueID = 0

// LocalID indexes a storage slot within one function.
type LocalID uint32

// NoLocalID marks an unresolved slot.
const NoLocalID = LocalID(^uint32(0))
