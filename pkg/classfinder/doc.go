// Package classfinder implements the class loader contract pkg/interp
// treats as an external collaborator: parse class files, build
// class/method/field/constant-pool objects, return a class by name. It
// does not parse a wire format itself; pkg/classfile.Decode already does
// that. classfinder owns the name-to-*classfile.Class lookup and the
// classpath search order.
package classfinder
