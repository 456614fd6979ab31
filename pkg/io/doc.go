// Package io reads and writes commit graphs as JSON.
//
// The format lists commits in creation order, so every parent precedes its
// children, followed by the final branch heads:
//
//	{
//	  "commits": [
//	    {"id": "c0001", "content": "Main St", "branch": "red"},
//	    {"id": "c0002", "content": "Oak Ave", "branch": "blue"},
//	    {"id": "c0003", "content": "Central", "branch": "red", "parents": ["c0001", "c0002"]}
//	  ],
//	  "heads": {"blue": "c0003", "red": "c0003"}
//	}
//
// [ReadJSON] replays the commits into a fresh [commitgraph.Graph], so a file
// that references an unknown parent or closes a cycle is rejected with the
// graph's invariant error.
package io
