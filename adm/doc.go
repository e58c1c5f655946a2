// Package adm models the Audio Definition Model (ITU-R BS.2076) scene graph
// carried in the axml chunk of a BW64 file.
//
// A Document owns every element. References between elements are plain
// pointers into the same Document; reverse lookups, such as finding the
// objects that own a track UID, go through Document methods rather than
// back pointers.
//
// ParseXML accepts either a full ebuCoreMain document or a bare
// audioFormatExtended element. References to BS.2094 common definitions
// that the document doesn't define itself are resolved from a built-in
// set, see CommonDefinitions.
package adm
