package common

// GeneratedNotice marks generated C++ sources.
const GeneratedNotice = "This file is auto-generated. Do not edit manually."

// FileHeader returns the generated-file notice as a single line comment.
func FileHeader(comment string) string {
	return comment + " " + GeneratedNotice
}

// GoFileHeader returns the header recognized by Go tooling as generated code.
func GoFileHeader(version string) string {
	if version == "" {
		return "// Code generated by cegen. DO NOT EDIT."
	}
	return "// Code generated by cegen " + version + ". DO NOT EDIT."
}
