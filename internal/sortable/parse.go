package sortable

import (
	"net/url"
	"sort"
	"strings"
)

// ParseOrders reads sort entries in either notation:
//
//	"age desc", "name"     // key with optional direction
//	"-age,+name"           // JSON:API style prefixes
//
// Items may themselves be comma-separated. Invalid directions are kept as-is
// so Sort can discard them.
func ParseOrders(items ...string) []Order {
	var out []Order
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if key, dir, ok := strings.Cut(part, " "); ok {
				out = append(out, Order{Key: key, Dir: dir})
				continue
			}
			switch part[0] {
			case '-':
				out = append(out, Order{Key: part[1:], Dir: string(Desc)})
			case '+':
				out = append(out, Order{Key: part[1:], Dir: string(Asc)})
			default:
				out = append(out, Order{Key: part, Dir: string(Asc)})
			}
		}
	}
	return out
}

// FromQuery collects orders from a query string: list values of param
// ("sort=-age,name" or "sort[]=-age") first, then map entries "sort[key]=dir". Map entries
// have no request order on the wire and are taken alphabetically.
func FromQuery(q url.Values, param string) []Order {
	out := ParseOrders(q[param]...)
	out = append(out, ParseOrders(q[param+"[]"]...)...)

	prefix := param + "["
	var keyed []string
	for name := range q {
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, "]") && name != param+"[]" {
			keyed = append(keyed, name)
		}
	}
	sort.Strings(keyed)
	for _, name := range keyed {
		out = append(out, Order{Key: name[len(prefix) : len(name)-1], Dir: q.Get(name)})
	}
	return out
}
