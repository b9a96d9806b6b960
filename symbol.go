package odd

import "sync"

// Symbol is an interned identifier. Equal names always intern to the same Symbol,
// so attribute and operation names compare as integers.
//
// The zero Symbol is never issued and is not recognized by any table.
type Symbol uint32

var (
	symbolsMu sync.RWMutex
	symbolIDs = make(map[string]Symbol)
	symbolStr = []string{""}
)

// Intern returns the Symbol for name, issuing a new one on first use.
func Intern(name string) Symbol {
	symbolsMu.RLock()
	if s, ok := symbolIDs[name]; ok {
		symbolsMu.RUnlock()
		return s
	}
	symbolsMu.RUnlock()

	symbolsMu.Lock()
	defer symbolsMu.Unlock()

	if s, ok := symbolIDs[name]; ok {
		return s
	}
	s := Symbol(len(symbolStr))
	symbolStr = append(symbolStr, name)
	symbolIDs[name] = s
	return s
}

// LookupSymbol returns the Symbol for name without interning it.
func LookupSymbol(name string) (Symbol, bool) {
	symbolsMu.RLock()
	defer symbolsMu.RUnlock()
	s, ok := symbolIDs[name]
	return s, ok
}

// Valid reports whether s was issued by Intern.
func (s Symbol) Valid() bool {
	if s == 0 {
		return false
	}
	symbolsMu.RLock()
	defer symbolsMu.RUnlock()
	return int(s) < len(symbolStr)
}

// String returns the interned name, or "" for an unrecognized Symbol.
func (s Symbol) String() string {
	symbolsMu.RLock()
	defer symbolsMu.RUnlock()
	if int(s) >= len(symbolStr) {
		return ""
	}
	return symbolStr[s]
}
