// Package polyjson encodes and decodes values of an open set of related
// types as JSON, embedding a "$type" discriminator naming the concrete
// variant so decoding can reconstruct the correct one.
//
// Variants are declared once in type groups and registered before any
// serializer is constructed:
//
//	shapes := polyjson.MustTypeGroup("shapes",
//	    polyjson.Variant[Circle]("circle"),
//	    polyjson.Variant[Square]("square"),
//	)
//	polyjson.RegisterTypeGroup(shapes)
//
//	codec, _ := polyjson.NewTyped[Shape](nil)
//	out, _ := codec.Encode(Circle{Radius: 5}, nil)
//	// {"$type":"circle","Radius":5}
//
// Encoding a runtime type that was never declared fails with
// *UnsupportedTypeError; decoding an unknown or missing "$type" fails with
// *FormatError. There is no tolerant fallback in either direction.
//
// Compiled configurations are cached per (base type, options identity) for
// the lifetime of the serializer and never evicted.
package polyjson
