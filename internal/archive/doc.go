// Package archive packages a stem directory into a zip file.
package archive
