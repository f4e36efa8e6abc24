package mof

const resourceTemplate = `instance of OsConfigResource as $OsConfigResource%[1]dref
{
   ResourceID = "%[2]s";
   PayloadKey = "%[3]s";
   RuleId = "%[4]s";
   ComponentName = "Compliance";
   ProcedureObjectName = "procedureObject";
   ProcedureObjectValue = "%[5]s";
   InitObjectName = "initObject";
   ReportedObjectName = "auditObject";
   ExpectedObjectValue = "PASS";
   DesiredObjectName = "remediateObject";
   DesiredObjectValue = "%[6]s";
   ModuleName = "GuestConfiguration";
   ModuleVersion = "1.0.0";
   ConfigurationName = "%[7]s";
   SourceInfo = "::4::5::OsConfigResource";
};
`

const documentTemplate = `instance of OMI_ConfigurationDocument
{
    Version="3.0.0";
    CompatibleVersionAdditionalProperties= {"Omi_BaseResource:ConfigurationName"};
    Author="Microsoft";
    GenerationDate="%s";
    Name="%s";
};
`
