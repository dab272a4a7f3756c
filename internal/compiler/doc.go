// Package compiler turns CUE yard definitions into ir.YardSpec values and
// checks them.
//
// A yard file declares named yards under the `yard` field:
//
//	yard: rush: {
//		description: "two splits"
//		parking:     [2, 1, 3, 1, 2]
//		decisions:   ["RIGHT"]   // or "R", or "LR"
//		oracle:      "static"    // or "search"
//	}
package compiler
