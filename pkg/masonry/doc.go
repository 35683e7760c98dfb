// Package masonry places variable-height items into equal-width columns,
// Pinterest style.
//
// Placement is greedy: each item goes to the column that is currently
// shortest, the lowest index winning ties. This is not optimal bin packing.
// It is O(items × columns) and, more importantly, appendable: a new page of
// items is placed on top of the existing column heights without touching
// anything already laid out.
//
// A layout pass has four steps:
//
//  1. [Configure] derives item width, column count, gaps and the left offset
//     that centers the grid from the container width and breakpoint.
//  2. [Columns.Reset] zeroes every column height.
//  3. [Columns.Place] assigns an item to the shortest column and grows that
//     column by the item height plus the vertical gap.
//  4. [Columns.Finalize] reports the container height (the tallest column).
//
// [Engine] keeps the columns between calls. [Engine.Reposition] runs all four
// steps over every visible item; [Engine.Append] runs only step 3 over new
// items. Before placement each batch is measured concurrently by a
// [Measurer] with a bounded per-item wait; a broken or slow image never
// blocks or aborts the pass.
package masonry
