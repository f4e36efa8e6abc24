package cpp

const headerTemplate = `{{.Header}}
#ifndef COMPLIANCEENGINE_PROCEDURE_MAP_H
#define COMPLIANCEENGINE_PROCEDURE_MAP_H

{{range .Includes}}#include <{{.}}>
{{end}}
namespace ComplianceEngine
{
// Forward declaration, defined in Bindings.h
template <typename Params>
struct Bindings;

// Forward declaration, defined in Bindings.h
template <typename Enum>
const std::map<std::string, Enum>& MapEnum();

{{range $e := .Enums}}// Maps the {{$e.Name}} enum labels to the enum values.
template <>
inline const std::map<std::string, {{$e.Name}}>& MapEnum<{{$e.Name}}>()
{
    static const std::map<std::string, {{$e.Name}}> map = {
{{- range $e.Labels}}
        {"{{.Display}}", {{$e.Name}}::{{.Ident}}},
{{- end}}
    };
    return map;
}

{{end}}{{range .Parameters}}// Defines the bindings for the {{.Name}} structure.
template <>
struct Bindings<{{.Name}}>
{
    using T = {{.Name}};
    static constexpr size_t size = {{len .Params}};
    static const char* names[];
    static constexpr auto members = std::make_tuple({{members .}});
};

{{end}}} // namespace ComplianceEngine

namespace std
{
{{range .Enums}}// Returns a string representation of the {{.Name}} enum value.
string to_string(ComplianceEngine::{{.Name}} value) noexcept(false); // NOLINT(*-identifier-naming)

{{end}}} // namespace std
#endif // COMPLIANCEENGINE_PROCEDURE_MAP_H
`

const sourceTemplate = `{{.Header}}
#include <ProcedureMap.h>
#include <Bindings.h>
#include <RevertMap.h>

namespace ComplianceEngine
{
{{range .Parameters}}// {{.Pos.File}}:{{.Pos.Line}}
const char* Bindings<{{.Name}}>::names[] = {{names .}};

{{end}}const ProcedureMap Evaluator::mProcedureMap = {
{{range .Dispatch}}    {"{{.Name}}", {{handlers .}}},
{{end}}};
} // namespace ComplianceEngine

namespace std
{
{{range .Enums}}string to_string(const ComplianceEngine::{{.Name}} value) noexcept(false)
{
    const auto& map = ComplianceEngine::MapEnum<ComplianceEngine::{{.Name}}>();
    static const auto revmap = ComplianceEngine::RevertMap(map);
    const auto it = revmap.find(value);
    if (revmap.end() == it)
    {
        throw std::out_of_range("Invalid enum value");
    }
    return it->second;
}

{{end}}} // namespace std
`
