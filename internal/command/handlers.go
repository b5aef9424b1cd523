package command

import "github.com/yndnr/rudis/internal/protocol/resp"

// GET key
func handleGet(s Store, args []string) resp.Value {
	v, ok := s.Get(args[0])
	if !ok {
		return resp.NullValue()
	}
	return resp.BulkStringValue(v)
}

// SET key value
//
// Arguments past the value are ignored.
func handleSet(s Store, args []string) resp.Value {
	s.Set(args[0], args[1])
	return resp.SimpleValue("OK")
}

// DEL key
//
// Deleting an absent key still replies OK. Only the first key is removed.
func handleDel(s Store, args []string) resp.Value {
	s.Delete(args[0])
	return resp.SimpleValue("OK")
}
