package dfa

import (
	"sort"

	"github.com/halcyon-lang/sdtgen/lexical/parser"
)

type symbolTable struct {
	symPos2Byte map[symbolPosition]byteRange
	endPos2ID   map[symbolPosition]parser.ModeKindID
}

func genSymbolTable(root byteTree) *symbolTable {
	symTab := &symbolTable{
		symPos2Byte: map[symbolPosition]byteRange{},
		endPos2ID:   map[symbolPosition]parser.ModeKindID{},
	}
	return genSymTab(symTab, root)
}

func genSymTab(symTab *symbolTable, node byteTree) *symbolTable {
	if node == nil {
		return symTab
	}

	switch n := node.(type) {
	case *symbolNode:
		symTab.symPos2Byte[n.pos] = byteRange{
			from: n.from,
			to:   n.to,
		}
	case *endMarkerNode:
		symTab.endPos2ID[n.pos] = n.id
	default:
		left, right := node.children()
		genSymTab(symTab, left)
		genSymTab(symTab, right)
	}
	return symTab
}

// DFA is the subset-construction automaton built directly from follow-pos
// sets (Berry-Sethi/Glushkov), before token numbers are resolved to dense
// state ids and before row-displacement compression (§4.C, §4.H).
//
// AcceptingTokens holds every token number whose acceptance ends in a given
// state, not just one: two regex alternatives can both end their match at
// the same subset-construction state (a keyword pattern subsumed into an
// identifier pattern's state set, for instance), and the runtime scanner
// needs the full list to pick among them by declaration order (§4.C).
type DFA struct {
	States          []string
	InitialState    string
	AcceptingTokens map[string][]parser.ModeKindID
	TransitionTable map[string][256]string
}

func GenDFA(root byteTree, symTab *symbolTable) *DFA {
	initialState := root.first()
	initialStateHash := initialState.hash()
	stateMap := map[string]*symbolPositionSet{
		initialStateHash: initialState,
	}
	tranTab := map[string][256]string{}
	{
		follow := genFollowTable(root)
		unmarkedStates := map[string]*symbolPositionSet{
			initialStateHash: initialState,
		}
		for len(unmarkedStates) > 0 {
			nextUnmarkedStates := map[string]*symbolPositionSet{}
			for hash, state := range unmarkedStates {
				tranTabOfState := [256]*symbolPositionSet{}
				for _, pos := range state.set() {
					if pos.isEndMark() {
						continue
					}
					valRange := symTab.symPos2Byte[pos]
					for symVal := valRange.from; symVal <= valRange.to; symVal++ {
						if tranTabOfState[symVal] == nil {
							tranTabOfState[symVal] = newSymbolPositionSet()
						}
						tranTabOfState[symVal].merge(follow[pos])
					}
				}
				for _, t := range tranTabOfState {
					if t == nil {
						continue
					}
					h := t.hash()
					if _, ok := stateMap[h]; ok {
						continue
					}
					stateMap[h] = t
					nextUnmarkedStates[h] = t
				}
				tabOfState := [256]string{}
				for v, t := range tranTabOfState {
					if t == nil {
						continue
					}
					tabOfState[v] = t.hash()
				}
				tranTab[hash] = tabOfState
			}
			unmarkedStates = nextUnmarkedStates
		}
	}

	accTab := map[string][]parser.ModeKindID{}
	{
		for h, s := range stateMap {
			var ids []parser.ModeKindID
			for _, pos := range s.set() {
				if !pos.isEndMark() {
					continue
				}
				ids = append(ids, symTab.endPos2ID[pos])
			}
			if len(ids) == 0 {
				continue
			}
			sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
			accTab[h] = ids
		}
	}

	var states []string
	{
		for s := range stateMap {
			states = append(states, s)
		}
		sort.Slice(states, func(i, j int) bool {
			return states[i] < states[j]
		})
	}

	return &DFA{
		States:          states,
		InitialState:    initialStateHash,
		AcceptingTokens: accTab,
		TransitionTable: tranTab,
	}
}

// EOFColumn is the reserved column index for the end-of-input transition
// (§3: trans[state][byte|EOF]). No regex alternative ever matches EOF as a
// character, so every row's EOF column is always 0 (no transition); the
// column exists so the runtime driver can probe EOF with the same
// trans[state][v] lookup it uses for bytes instead of special-casing it.
const EOFColumn = 256

// rowWidth is the number of columns per state row: one per byte value plus
// the reserved EOF column.
const rowWidth = 257

// ScannerTables is the uncompressed form of §3's persisted scanner table
// fields: Final holds the single highest-priority (lowest token number)
// token to report at each state (0 when the state isn't accepting);
// TokenIndex/TokenTable jointly give the *full* set of token numbers ending
// at a state, for the runtime's ambiguity handling; Transition is the
// dense state x (byte|EOF) table, one row per state, rowWidth columns.
type ScannerTables struct {
	InitialState int
	StateCount   int
	Final        []int
	TokenIndex   []int
	TokenTable   []int
	Transition   []int // len == StateCount*rowWidth, row-major
}

// GenScannerTables resolves a DFA's string-hash state identities into dense
// 1-based state numbers (0 remains reserved for "no such state", matching
// the compressed table's error-sentinel convention, §3) and flattens its
// per-state accepting-token sets into the index/table pair described above.
func GenScannerTables(dfa *DFA) *ScannerTables {
	stateHash2ID := map[string]int{}
	for i, s := range dfa.States {
		stateHash2ID[s] = i + 1
	}

	rowCount := len(dfa.States) + 1
	final := make([]int, rowCount)
	var tokenTable []int
	tokenIndex := make([]int, rowCount+1)
	for _, s := range dfa.States {
		id := stateHash2ID[s]
		ids := dfa.AcceptingTokens[s]
		tokenIndex[id] = len(tokenTable)
		if len(ids) > 0 {
			final[id] = int(ids[0])
		}
		for _, t := range ids {
			tokenTable = append(tokenTable, int(t))
		}
	}
	tokenIndex[rowCount] = len(tokenTable)

	tran := make([]int, rowCount*rowWidth)
	for s, tab := range dfa.TransitionTable {
		from := stateHash2ID[s]
		for v, to := range tab {
			if to == "" {
				continue
			}
			tran[from*rowWidth+v] = stateHash2ID[to]
		}
	}
	// EOFColumn is left at its zero value in every row: no transition ever
	// fires on end-of-input.

	return &ScannerTables{
		InitialState: stateHash2ID[dfa.InitialState],
		StateCount:   rowCount,
		Final:        final,
		TokenIndex:   tokenIndex,
		TokenTable:   tokenTable,
		Transition:   tran,
	}
}
